package analyzer

import "testing"

func TestClassify(t *testing.T) {
	tests := []struct {
		name     string
		sql      string
		expected Tier
	}{
		{"plain select", "SELECT * FROM t", TierSimple},
		{"single aggregate", "SELECT COUNT(*) FROM t", TierSimple},
		{"group by", "SELECT COUNT(*) FROM t GROUP BY c", TierMedium},
		{"order by", "SELECT * FROM t ORDER BY c", TierMedium},
		{"join", "SELECT * FROM t1 JOIN t2 ON t1.id = t2.id", TierMedium},
		{"window function", "SELECT ROW_NUMBER() OVER (ORDER BY id) FROM t", TierComplex},
		{"window clause", "SELECT SUM(v) OVER w FROM t WINDOW w AS (PARTITION BY c)", TierComplex},

		// Masked keywords are invisible to every rule.
		{"join in line comment", "SELECT * FROM t -- JOIN", TierSimple},
		{"group by in block comment", "SELECT * FROM t /* GROUP BY c */", TierSimple},
		{"join in literal", "SELECT 'JOIN' FROM t", TierSimple},
		{"group by in double-quoted literal", `SELECT "Contains GROUP BY" FROM t`, TierSimple},

		// Word boundaries reject embedded matches.
		{"joined identifier", "SELECT * FROM tableJOINother", TierSimple},
		{"join prefix identifier", "SELECT * FROM JOINtable", TierSimple},
		{"counter is not count", "SELECT COUNTER FROM t", TierSimple},
		{"joining literal", "SELECT 'JOINING' FROM t", TierSimple},

		// Subquery depth rule.
		{"one subquery stays simple", "SELECT * FROM (SELECT * FROM t1) x", TierSimple},
		{"in list is not a subquery", "SELECT * FROM t WHERE c IN (1, 2, 3)", TierSimple},
		{
			"three subqueries go complex",
			"SELECT * FROM (SELECT 1) a, (SELECT 2) b, (SELECT 3) c",
			TierComplex,
		},

		// Aggregate count rule: more than three calls is at least Medium.
		{
			"four aggregates",
			"SELECT COUNT(a), SUM(b), AVG(c), MIN(d) FROM t",
			TierMedium,
		},
		{
			"three aggregates stay simple",
			"SELECT COUNT(a), SUM(b), AVG(c) FROM t",
			TierSimple,
		},

		// Rules never downgrade: window wins even with a later cheap shape.
		{
			"window plus group by",
			"SELECT category, RANK() OVER (ORDER BY total) FROM t GROUP BY category",
			TierComplex,
		},

		{"empty string", "", TierSimple},
		{"lowercase keywords", "select * from t1 join t2 on t1.id = t2.id", TierMedium},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Classify(tt.sql); got != tt.expected {
				t.Errorf("Classify(%q) = %v, want %v", tt.sql, got, tt.expected)
			}
		})
	}
}

func TestCountSubqueries(t *testing.T) {
	tests := []struct {
		name     string
		sql      string
		expected int
	}{
		{"no parentheses", "SELECT * FROM t", 0},
		{"single subquery", "SELECT * FROM (SELECT * FROM t1) x", 1},
		{"nested subqueries", "SELECT * FROM (SELECT * FROM (SELECT * FROM t) t1) t2", 2},
		{"in list", "SELECT * FROM t WHERE c IN (1, 2, 3)", 0},
		{"aggregate call", "SELECT COUNT(*) FROM t", 0},
		{"mixed", "SELECT * FROM (SELECT * FROM t) x WHERE c IN (1, 2, 3)", 1},
		{"select not at depth", "SELECT 1; SELECT 2", 0},
		{"selection identifier inside parens", "SELECT * FROM t WHERE c IN (SELECTION)", 0},
		{
			"one count per paren transition",
			"SELECT * FROM (SELECT a FROM t WHERE x SELECT) y",
			1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CountSubqueries(Normalize(tt.sql)); got != tt.expected {
				t.Errorf("CountSubqueries(%q) = %d, want %d", tt.sql, got, tt.expected)
			}
		})
	}
}

func TestTierOrdering(t *testing.T) {
	if !TierComplex.AtLeast(TierMedium) || !TierMedium.AtLeast(TierSimple) {
		t.Fatal("tier order must be Simple < Medium < Complex")
	}
	if maxTier(TierComplex, TierSimple) != TierComplex {
		t.Fatal("maxTier must never downgrade")
	}
	if maxTier(TierSimple, TierMedium) != TierMedium {
		t.Fatal("maxTier must pick the higher rank")
	}
}

func TestParseTier(t *testing.T) {
	for input, want := range map[string]Tier{
		"Simple":  TierSimple,
		"medium":  TierMedium,
		"COMPLEX": TierComplex,
		" simple": TierSimple,
	} {
		got, err := ParseTier(input)
		if err != nil {
			t.Fatalf("ParseTier(%q): %v", input, err)
		}
		if got != want {
			t.Errorf("ParseTier(%q) = %v, want %v", input, got, want)
		}
	}

	if _, err := ParseTier("legendary"); err == nil {
		t.Error("ParseTier should reject unknown names")
	}
}

func TestTierJSONRoundTrip(t *testing.T) {
	for _, tier := range []Tier{TierSimple, TierMedium, TierComplex} {
		data, err := tier.MarshalJSON()
		if err != nil {
			t.Fatal(err)
		}
		var back Tier
		if err := back.UnmarshalJSON(data); err != nil {
			t.Fatal(err)
		}
		if back != tier {
			t.Errorf("round trip of %v produced %v", tier, back)
		}
	}
}
