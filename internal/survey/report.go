package survey

import (
	"github.com/lox/trucoforbots/internal/bot"
	"github.com/lox/trucoforbots/internal/classification"
	"github.com/lox/trucoforbots/internal/fileutil"
	"github.com/lox/trucoforbots/internal/statistics"
)

// Report is the outcome of a survey run.
type Report struct {
	Hands   int    `json:"hands"`
	Workers int    `json:"workers"`
	Seed    int64  `json:"seed"`
	Vira    string `json:"vira,omitempty"`

	// Power is the distribution of first-round hand power.
	Power Summary `json:"power"`
	// Archetypes maps archetype name to the share of hands matching it. A
	// hand may match several.
	Archetypes map[string]float64 `json:"archetypes"`

	Profiles []ProfileReport `json:"profiles"`
}

// Summary describes a numeric sample.
type Summary struct {
	Mean   float64 `json:"mean"`
	StdDev float64 `json:"stdDev"`
	Median float64 `json:"median"`
	P10    float64 `json:"p10"`
	P90    float64 `json:"p90"`
}

// Proportion is an observed rate with its 95% interval.
type Proportion struct {
	Value float64 `json:"value"`
	Low   float64 `json:"low"`
	High  float64 `json:"high"`
}

// ProfileReport holds the answers one profile gave.
type ProfileReport struct {
	Name    string      `json:"name"`
	Variant bot.Variant `json:"variant"`

	OpeningAccept Proportion `json:"openingAccept"`
	RaiseRequest  Proportion `json:"raiseRequest"`
	// Replies maps each raise reply to its share of hands.
	Replies map[string]float64 `json:"replies"`
	// LeadValue summarises the relative value of the card led.
	LeadValue Summary `json:"leadValue"`
	// Tiers maps tier to share of hands. Only tier profiles fill it.
	Tiers map[int]float64 `json:"tiers,omitempty"`
}

// Reply returns the share of hands answered with r.
func (p ProfileReport) Reply(r bot.RaiseReply) float64 {
	return p.Replies[r.String()]
}

// Profile returns the report for the named profile.
func (r *Report) Profile(name string) (ProfileReport, bool) {
	for _, p := range r.Profiles {
		if p.Name == name {
			return p, true
		}
	}
	return ProfileReport{}, false
}

// WriteJSON saves the report atomically to filename.
func (r *Report) WriteJSON(filename string) error {
	return fileutil.WriteJSONAtomic(filename, r)
}

func buildReport(total *workerResult, policies []bot.Policy, opts Options, workers int) *Report {
	report := &Report{
		Hands:      total.hands,
		Workers:    workers,
		Seed:       opts.Seed,
		Power:      summarise(&total.power),
		Archetypes: make(map[string]float64),
		Profiles:   make([]ProfileReport, 0, len(policies)),
	}
	if opts.Vira != nil {
		report.Vira = opts.Vira.String()
	}
	for _, a := range classification.AllArchetypes() {
		report.Archetypes[a.String()] = share(total.archetypes[int(a)], total.hands)
	}

	for i, policy := range policies {
		t := total.profiles[i]
		pr := ProfileReport{
			Name:          policy.Name(),
			Variant:       policy.Variant(),
			OpeningAccept: proportion(t.opening),
			RaiseRequest:  proportion(t.raise),
			Replies:       make(map[string]float64, 3),
			LeadValue:     summarise(&t.leadValue),
		}
		for _, reply := range []bot.RaiseReply{bot.Decline, bot.Accept, bot.ReRaise} {
			pr.Replies[reply.String()] = t.replies.Share(int(reply))
		}
		if len(t.tiers) > 0 {
			pr.Tiers = make(map[int]float64, classification.MaxTier)
			for tier := classification.MinTier; tier <= classification.MaxTier; tier++ {
				pr.Tiers[tier] = t.tiers.Share(tier)
			}
		}
		report.Profiles = append(report.Profiles, pr)
	}
	return report
}

func summarise(s *statistics.Sample) Summary {
	return Summary{
		Mean:   s.Mean(),
		StdDev: s.StdDev(),
		Median: s.Median(),
		P10:    s.Percentile(0.1),
		P90:    s.Percentile(0.9),
	}
}

func proportion(r statistics.Rate) Proportion {
	lo, hi := r.ConfidenceInterval95()
	return Proportion{Value: r.Value(), Low: lo, High: hi}
}

func share(n, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(n) / float64(total)
}
