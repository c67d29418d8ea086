// Package translate turns free-text retail questions into queries with
// keyword rules. It is a best-effort helper; anything it cannot place is
// reported as unmatched and left to the caller.
package translate

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// defaultTop is the row count used by "top" questions that name no number.
const defaultTop = 10

// rule maps a question to a query when every group in all has at least one
// word present in the text.
type rule struct {
	name  string
	all   [][]string
	query func(text string) string
}

var rules = []rule{
	{
		name: "return-rate-by-product",
		all:  [][]string{{"return", "returned", "returns", "refund"}, {"product", "products", "item", "items"}},
		query: func(string) string {
			return "SELECT product_name, 100.0 * SUM(CASE WHEN return_status THEN 1 ELSE 0 END) / COUNT(*) AS return_rate " +
				"FROM data GROUP BY product_name ORDER BY return_rate DESC"
		},
	},
	{
		name: "return-rate",
		all:  [][]string{{"return", "returned", "returns", "refund"}},
		query: func(string) string {
			return "SELECT 100.0 * SUM(CASE WHEN return_status THEN 1 ELSE 0 END) / COUNT(*) AS return_rate FROM data"
		},
	},
	{
		name: "revenue-by-store",
		all:  [][]string{{"revenue", "sales", "income", "earnings"}, {"store", "stores", "location", "locations", "city", "branch"}},
		query: func(string) string {
			return "SELECT store_location, SUM(quantity * unit_price) AS revenue FROM data " +
				"GROUP BY store_location ORDER BY revenue DESC"
		},
	},
	{
		name: "revenue-by-category",
		all:  [][]string{{"revenue", "sales", "income", "earnings"}, {"category", "categories"}},
		query: func(string) string {
			return "SELECT product_category, SUM(quantity * unit_price) AS revenue FROM data " +
				"GROUP BY product_category ORDER BY revenue DESC"
		},
	},
	{
		name: "average-order-value",
		all:  [][]string{{"average", "avg", "mean", "typical"}, {"order", "orders", "transaction", "transactions", "basket", "value", "spend"}},
		query: func(string) string {
			return "SELECT AVG(quantity * unit_price) AS average_order_value FROM data"
		},
	},
	{
		name: "payment-methods",
		all:  [][]string{{"payment", "payments", "pay", "paid", "cash", "card", "upi"}},
		query: func(string) string {
			return "SELECT payment_method, COUNT(*) AS transactions FROM data " +
				"GROUP BY payment_method ORDER BY transactions DESC"
		},
	},
	{
		name: "top-products",
		all:  [][]string{{"top", "best", "popular", "most", "selling", "bestselling", "bestsellers"}, {"product", "products", "item", "items", "sold", "selling"}},
		query: func(text string) string {
			return fmt.Sprintf("SELECT product_name, SUM(quantity) AS total_sold FROM data "+
				"GROUP BY product_name ORDER BY total_sold DESC LIMIT %d", topN(text))
		},
	},
	{
		name: "transactions-by-store",
		all:  [][]string{{"transactions", "orders", "count", "many"}, {"store", "stores", "location", "locations", "branch"}},
		query: func(string) string {
			return "SELECT store_location, COUNT(*) AS transactions FROM data " +
				"GROUP BY store_location ORDER BY transactions DESC"
		},
	},
}

var (
	wordPattern = regexp.MustCompile(`[a-z0-9]+`)
	topPattern  = regexp.MustCompile(`\b(?:top|best|first)\s+(\d+)\b`)
)

// Translate maps text to a query. The second result is false when no rule
// recognised the question.
func Translate(text string) (string, bool) {
	q, _, ok := Match(text)
	return q, ok
}

// Match is Translate that also names the rule that fired.
func Match(text string) (string, string, bool) {
	lower := strings.ToLower(text)
	words := make(map[string]bool)
	for _, w := range wordPattern.FindAllString(lower, -1) {
		words[w] = true
	}

	for _, r := range rules {
		if matches(words, r.all) {
			return r.query(lower), r.name, true
		}
	}
	return "", "", false
}

func matches(words map[string]bool, all [][]string) bool {
	for _, anyOf := range all {
		found := false
		for _, w := range anyOf {
			if words[w] {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// topN extracts the N of "top N"; defaultTop when absent or out of range.
func topN(text string) int {
	m := topPattern.FindStringSubmatch(text)
	if m == nil {
		return defaultTop
	}
	n, err := strconv.Atoi(m[1])
	if err != nil || n <= 0 || n > 1000 {
		return defaultTop
	}
	return n
}
