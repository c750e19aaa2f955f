package deck

import "testing"

func TestRelativeValueDistribution(t *testing.T) {
	for _, vira := range AllCards() {
		counts := make(map[int]int)
		maxValue, maxCard := 0, Card{}
		trumps := 0

		for _, card := range AllCards() {
			v := card.RelativeValue(vira)
			if v < 1 || v > 13 {
				t.Fatalf("vira %v: %v has value %d outside [1,13]", vira, card, v)
			}
			counts[v]++
			if card.IsManilha(vira) {
				trumps++
				if v < DiamondsTrumpValue {
					t.Errorf("vira %v: trump %v has value %d", vira, card, v)
				}
			} else if v >= DiamondsTrumpValue {
				t.Errorf("vira %v: non-trump %v has value %d", vira, card, v)
			}
			if v > maxValue {
				maxValue, maxCard = v, card
			}
		}

		if trumps != 4 {
			t.Errorf("vira %v: %d trumps, want 4", vira, trumps)
		}
		for v := 1; v <= 9; v++ {
			if counts[v] != 4 {
				t.Errorf("vira %v: value %d held by %d cards, want 4", vira, v, counts[v])
			}
		}
		for v := 10; v <= 13; v++ {
			if counts[v] != 1 {
				t.Errorf("vira %v: value %d held by %d cards, want 1", vira, v, counts[v])
			}
		}
		if !maxCard.IsZap(vira) {
			t.Errorf("vira %v: strongest card %v is not the zap", vira, maxCard)
		}
	}
}

func TestRelativeValueScenario(t *testing.T) {
	vira := MustParseCard("6h")

	tests := []struct {
		card  string
		value int
	}{
		{"4d", 1},
		{"6c", 3},
		{"Qs", 4},
		{"Kh", 6},
		{"Ad", 7},
		{"2c", 8},
		{"3s", 9},
		{"7d", 10},
		{"7s", 11},
		{"7h", 12},
		{"7c", 13},
	}

	for _, tt := range tests {
		t.Run(tt.card, func(t *testing.T) {
			if got := MustParseCard(tt.card).RelativeValue(vira); got != tt.value {
				t.Errorf("RelativeValue(%s) = %d, want %d", tt.card, got, tt.value)
			}
		})
	}

	if !MustParseCard("7c").IsZap(vira) || !MustParseCard("7h").IsCopas(vira) {
		t.Error("7c should be zap and 7h copas under a six vira")
	}
	if MustParseCard("7h").IsZap(vira) || MustParseCard("6c").IsManilha(vira) {
		t.Error("unexpected trump identity")
	}
}

func TestRelativeValueWrapsAfterThree(t *testing.T) {
	vira := MustParseCard("3s")

	if !MustParseCard("4c").IsZap(vira) {
		t.Error("four of clubs should be the zap when the vira is a three")
	}
	if got := MustParseCard("5d").RelativeValue(vira); got != 1 {
		t.Errorf("five = %d, want 1", got)
	}
	if got := MustParseCard("3h").RelativeValue(vira); got != 9 {
		t.Errorf("three = %d, want 9", got)
	}
}

func TestCompareValueTo(t *testing.T) {
	vira := MustParseCard("6h")

	for _, a := range AllCards() {
		for _, b := range AllCards() {
			got := a.CompareValueTo(b, vira)
			if got != -b.CompareValueTo(a, vira) {
				t.Fatalf("compare(%v,%v) is not antisymmetric", a, b)
			}
			if got == 0 && a != b && (a.Rank != b.Rank || a.IsManilha(vira)) {
				t.Errorf("%v and %v compare equal", a, b)
			}
		}
	}

	if MustParseCard("2c").CompareValueTo(HiddenCard, vira) != 1 {
		t.Error("any card should beat a hidden card")
	}
}
