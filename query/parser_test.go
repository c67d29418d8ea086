package query

import (
	"errors"
	"strings"
	"testing"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		query   string
		star    bool
		aliases []string
		exprs   []string
		filter  string
		groupBy []string
		orderBy *OrderByItem
		limit   int64 // -1 means no LIMIT
	}{
		{
			name:  "select star",
			query: "SELECT * FROM data",
			star:  true,
			limit: -1,
		},
		{
			name:    "top product",
			query:   "SELECT product_name, SUM(quantity) AS total_sold FROM data GROUP BY product_name ORDER BY total_sold DESC LIMIT 1",
			aliases: []string{"product_name", "total_sold"},
			exprs:   []string{"product_name", "SUM(quantity)"},
			groupBy: []string{"product_name"},
			orderBy: &OrderByItem{Column: "total_sold", Desc: true},
			limit:   1,
		},
		{
			name:    "lower-case keywords",
			query:   "select store_location from data where payment_method = 'Cash' order by store_location asc",
			aliases: []string{"store_location"},
			exprs:   []string{"store_location"},
			filter:  "payment_method = 'Cash'",
			orderBy: &OrderByItem{Column: "store_location"},
			limit:   -1,
		},
		{
			name:    "return rate",
			query:   "SELECT 100.0 * SUM(CASE WHEN return_status = 1 THEN 1 ELSE 0 END) / COUNT(*) AS return_rate FROM data",
			aliases: []string{"return_rate"},
			exprs:   []string{"100 * SUM(CASE WHEN return_status = 1 THEN 1 ELSE 0 END) / COUNT(*)"},
			limit:   -1,
		},
		{
			name:    "scale inside SUM",
			query:   "SELECT SUM(100 * CASE WHEN return_status THEN 1 ELSE 0 END) / COUNT(*) FROM data",
			aliases: []string{"rate_result"},
			exprs:   []string{"100 * SUM(CASE WHEN return_status THEN 1 ELSE 0 END) / COUNT(*)"},
			limit:   -1,
		},
		{
			name:    "bare conditional count",
			query:   "SELECT CASE WHEN return_status THEN 1 ELSE 0 END FROM data",
			aliases: []string{"rate_result"},
			exprs:   []string{"SUM(CASE WHEN return_status THEN 1 ELSE 0 END)"},
			limit:   -1,
		},
		{
			name:    "revenue product",
			query:   "SELECT store_location, SUM(quantity * unit_price) AS revenue FROM data GROUP BY store_location",
			aliases: []string{"store_location", "revenue"},
			exprs:   []string{"store_location", "SUM(quantity * unit_price)"},
			groupBy: []string{"store_location"},
			limit:   -1,
		},
		{
			name:    "count forms",
			query:   "SELECT COUNT(*), COUNT(transaction_id), AVG(unit_price) FROM data",
			aliases: []string{"count_result", "count_result_2", "avg_result"},
			exprs:   []string{"COUNT(*)", "COUNT(transaction_id)", "AVG(unit_price)"},
			limit:   -1,
		},
		{
			name:    "default aliases are disambiguated",
			query:   "SELECT SUM(a), SUM(b), SUM(c) FROM data",
			aliases: []string{"sum_result", "sum_result_2", "sum_result_3"},
			exprs:   []string{"SUM(a)", "SUM(b)", "SUM(c)"},
			limit:   -1,
		},
		{
			name:    "explicit alias takes the default name first",
			query:   "SELECT SUM(a), SUM(b) AS sum_result FROM data",
			aliases: []string{"sum_result_2", "sum_result"},
			exprs:   []string{"SUM(a)", "SUM(b)"},
			limit:   -1,
		},
		{
			name:    "implicit alias and lower-cased names",
			query:   "SELECT Product_Name, SUM(quantity) Total FROM data GROUP BY Product_Name",
			aliases: []string{"product_name", "total"},
			exprs:   []string{"Product_Name", "SUM(quantity)"},
			groupBy: []string{"Product_Name"},
			limit:   -1,
		},
		{
			name:   "boolean condition tree",
			query:  "SELECT * FROM data WHERE store_location = 'Delhi' AND NOT (return_status = 1 OR payment_method = 'Cash')",
			star:   true,
			filter: "(store_location = 'Delhi' AND NOT (return_status = 1 OR payment_method = 'Cash'))",
			limit:  -1,
		},
		{
			name:   "boolean literal",
			query:  "SELECT * FROM data WHERE return_status = false LIMIT 0",
			star:   true,
			filter: "return_status = false",
			limit:  0,
		},
		{
			name:    "quoted source",
			query:   "SELECT * FROM 'sales 2024.csv' GROUP BY store_location, payment_method",
			star:    true,
			groupBy: []string{"store_location", "payment_method"},
			limit:   -1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plan, err := Parse(tt.query)
			if err != nil {
				t.Fatalf("Parse(%q) error: %v", tt.query, err)
			}

			if plan.Star != tt.star {
				t.Errorf("Star = %v, want %v", plan.Star, tt.star)
			}
			if len(plan.SelectList) != len(tt.aliases) {
				t.Fatalf("got %d select items, want %d", len(plan.SelectList), len(tt.aliases))
			}
			for i, item := range plan.SelectList {
				if item.Alias != tt.aliases[i] {
					t.Errorf("item %d alias = %q, want %q", i, item.Alias, tt.aliases[i])
				}
				if got := item.Expr.String(); got != tt.exprs[i] {
					t.Errorf("item %d expr = %q, want %q", i, got, tt.exprs[i])
				}
			}

			switch {
			case tt.filter == "" && plan.Filter != nil:
				t.Errorf("Filter = %v, want none", plan.Filter)
			case tt.filter != "" && plan.Filter == nil:
				t.Errorf("Filter = nil, want %q", tt.filter)
			case tt.filter != "" && plan.Filter.String() != tt.filter:
				t.Errorf("Filter = %q, want %q", plan.Filter.String(), tt.filter)
			}

			if strings.Join(plan.GroupBy, ",") != strings.Join(tt.groupBy, ",") {
				t.Errorf("GroupBy = %v, want %v", plan.GroupBy, tt.groupBy)
			}

			switch {
			case tt.orderBy == nil && plan.OrderBy != nil:
				t.Errorf("OrderBy = %+v, want none", plan.OrderBy)
			case tt.orderBy != nil && (plan.OrderBy == nil || *plan.OrderBy != *tt.orderBy):
				t.Errorf("OrderBy = %+v, want %+v", plan.OrderBy, tt.orderBy)
			}

			switch {
			case tt.limit < 0 && plan.Limit != nil:
				t.Errorf("Limit = %d, want none", *plan.Limit)
			case tt.limit >= 0 && (plan.Limit == nil || *plan.Limit != tt.limit):
				t.Errorf("Limit = %v, want %d", plan.Limit, tt.limit)
			}
		})
	}
}

func TestParseConditionalCountShape(t *testing.T) {
	plan, err := Parse("SELECT 100.0 * SUM(CASE WHEN return_status THEN 1 ELSE 0 END) / COUNT(*) FROM data")
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}

	cc, ok := plan.SelectList[0].Expr.(*ConditionalCountExpr)
	if !ok {
		t.Fatalf("expr = %T, want *ConditionalCountExpr", plan.SelectList[0].Expr)
	}
	if !cc.Scaled || cc.Scale != 100 || !cc.Divided {
		t.Errorf("got Scaled=%v Scale=%v Divided=%v, want true 100 true", cc.Scaled, cc.Scale, cc.Divided)
	}
	if _, ok := cc.Condition.(*FlagPredicate); !ok {
		t.Errorf("condition = %T, want *FlagPredicate", cc.Condition)
	}
	if !plan.HasAggregate() {
		t.Error("HasAggregate() = false, want true")
	}
}

func TestParseCountArgument(t *testing.T) {
	tests := []struct {
		query string
		want  string
	}{
		{"SELECT COUNT(1) FROM data", "COUNT(1)"},
		{"SELECT COUNT(DISTINCT product_name) FROM data", "COUNT(DISTINCT product_name)"},
		{"SELECT COUNT( quantity * unit_price ) FROM data", "COUNT(quantity * unit_price)"},
		{"SELECT COUNT(COALESCE(a, 'x')) FROM data", "COUNT(COALESCE(a, 'x'))"},
		{"SELECT COUNT(*) FROM data", "COUNT(*)"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			plan, err := Parse(tt.query)
			if err != nil {
				t.Fatalf("Parse(%q) error: %v", tt.query, err)
			}
			agg, ok := plan.SelectList[0].Expr.(*AggregateExpr)
			if !ok || agg.Kind != AggCount {
				t.Fatalf("expr = %#v, want a COUNT aggregate", plan.SelectList[0].Expr)
			}
			if got := agg.String(); got != tt.want {
				t.Errorf("String() = %q, want %q", got, tt.want)
			}
			if plan.SelectList[0].Alias != "count_result" {
				t.Errorf("alias = %q, want count_result", plan.SelectList[0].Alias)
			}
		})
	}
}

func TestParseUnsupportedWhere(t *testing.T) {
	tests := []struct {
		query string
		text  string
	}{
		{"SELECT * FROM data WHERE price > 100", "price > 100"},
		{"SELECT * FROM data WHERE quantity >= 2 ORDER BY quantity", "quantity >= 2"},
		{"SELECT * FROM data WHERE a = b LIMIT 5", "a = b"},
		{"SELECT * FROM data WHERE store_location != 'Delhi'", "store_location != 'Delhi'"},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			plan, err := Parse(tt.query)
			if err != nil {
				t.Fatalf("Parse error: %v", err)
			}
			if !IsMatchAll(plan.Filter) {
				t.Fatalf("Filter = %v, want match-all fallback", plan.Filter)
			}
			if got := plan.Filter.(*MatchAllPredicate).Text; got != tt.text {
				t.Errorf("fallback text = %q, want %q", got, tt.text)
			}
		})
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name    string
		query   string
		wantMsg string
	}{
		{"empty query", "", "expected SELECT"},
		{"missing select list", "SELECT FROM data", "expected select expression"},
		{"missing source", "SELECT * FROM", "expected source name"},
		{"missing FROM", "SELECT a", "expected FROM"},
		{"star mixed with fields", "SELECT *, a FROM data", "cannot be combined"},
		{"field after star", "SELECT a, * FROM data", "cannot be combined"},
		{"negative limit", "SELECT * FROM data LIMIT -1", "non-negative integer"},
		{"non-numeric limit", "SELECT * FROM data LIMIT abc", "non-negative integer"},
		{"fractional limit", "SELECT * FROM data LIMIT 1.5", "non-negative integer"},
		{"duplicate alias", "SELECT a AS x, b AS X FROM data", "duplicate column alias"},
		{"unsupported function", "SELECT MAX(a) FROM data", "unsupported function"},
		{"empty count", "SELECT COUNT() FROM data", "expected argument or *"},
		{"unclosed count", "SELECT COUNT(a FROM data", "expected ')'"},
		{"multi-column order", "SELECT a FROM data ORDER BY a, b", "single column"},
		{"grouped order by input column", "SELECT a, COUNT(*) AS n FROM data GROUP BY a ORDER BY b", "output column"},
		{"aggregate order by input column", "SELECT SUM(a) FROM data ORDER BY a", "output column"},
		{"bare product", "SELECT a * b FROM data", "only supported inside SUM"},
		{"scaled sum", "SELECT 100 * SUM(a) FROM data", "scale factor"},
		{"divided sum", "SELECT SUM(a) / COUNT(*) FROM data", "division"},
		{"divide by field", "SELECT SUM(CASE WHEN a THEN 1 ELSE 0 END) / b FROM data", "expected COUNT(*)"},
		{"case with other values", "SELECT SUM(CASE WHEN a THEN 2 ELSE 0 END) FROM data", "THEN 1 ELSE 0"},
		{"empty where", "SELECT * FROM data WHERE LIMIT 1", "expected condition"},
		{"unterminated string", "SELECT * FROM data WHERE a = 'Delhi", "unterminated string"},
		{"invalid character", "SELECT * FROM data WHERE a = @", "invalid character"},
		{"trailing tokens", "SELECT * FROM data extra", "after query"},
		{"group by without fields", "SELECT a FROM data GROUP BY", "expected identifier"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plan, err := Parse(tt.query)
			if err == nil {
				t.Fatalf("Parse(%q) = %+v, want error", tt.query, plan)
			}
			if !IsParseError(err) {
				t.Errorf("error %v is %T, want *ParseError", err, err)
			}
			if !strings.Contains(err.Error(), tt.wantMsg) {
				t.Errorf("error = %q, want it to contain %q", err.Error(), tt.wantMsg)
			}
		})
	}
}

func TestParseLimits(t *testing.T) {
	t.Run("query too long", func(t *testing.T) {
		_, err := Parse("SELECT * FROM data WHERE a = '" + strings.Repeat("x", MaxQueryLength) + "'")
		if !errors.Is(err, ErrQueryTooLong) {
			t.Errorf("error = %v, want ErrQueryTooLong", err)
		}
	})

	t.Run("too many tokens", func(t *testing.T) {
		_, err := Parse("SELECT " + strings.Repeat("a, ", MaxTokens) + "a FROM data")
		if !errors.Is(err, ErrTooManyTokens) {
			t.Errorf("error = %v, want ErrTooManyTokens", err)
		}
	})

	t.Run("nesting too deep", func(t *testing.T) {
		depth := MaxExpressionDepth + 10
		where := strings.Repeat("(", depth) + "a = 1" + strings.Repeat(")", depth)
		_, err := Parse("SELECT * FROM data WHERE " + where)
		if !errors.Is(err, ErrExpressionTooDeep) {
			t.Errorf("error = %v, want ErrExpressionTooDeep", err)
		}
		if !IsParseError(err) {
			t.Errorf("error %T is not a *ParseError", err)
		}
	})
}

func TestParseErrorPosition(t *testing.T) {
	_, err := Parse("SELECT a AS x, b AS x FROM data")
	var pe *ParseError
	if !errors.As(err, &pe) {
		t.Fatalf("error = %v, want *ParseError", err)
	}
	if pe.Pos != 15 {
		t.Errorf("Pos = %d, want 15", pe.Pos)
	}
}
