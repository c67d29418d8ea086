// Package catalog holds the predefined retail questions and the queries that
// answer them.
package catalog

import (
	"fmt"
	"strings"
)

// Question pairs a named business question with its query.
type Question struct {
	Name  string `json:"name"`
	Text  string `json:"text"`
	Query string `json:"query"`
}

var questions = []Question{
	{
		Name:  "top-products",
		Text:  "Which products sell the most units?",
		Query: "SELECT product_name, SUM(quantity) AS total_sold FROM data GROUP BY product_name ORDER BY total_sold DESC LIMIT 10",
	},
	{
		Name:  "revenue-by-store",
		Text:  "How much revenue does each store bring in?",
		Query: "SELECT store_location, SUM(quantity * unit_price) AS revenue FROM data GROUP BY store_location ORDER BY revenue DESC",
	},
	{
		Name:  "revenue-by-category",
		Text:  "How much revenue does each product category bring in?",
		Query: "SELECT product_category, SUM(quantity * unit_price) AS revenue FROM data GROUP BY product_category ORDER BY revenue DESC",
	},
	{
		Name:  "return-rate",
		Text:  "What share of transactions are returned?",
		Query: "SELECT 100.0 * SUM(CASE WHEN return_status THEN 1 ELSE 0 END) / COUNT(*) AS return_rate FROM data",
	},
	{
		Name:  "return-rate-by-product",
		Text:  "Which products are returned most often?",
		Query: "SELECT product_name, 100.0 * SUM(CASE WHEN return_status THEN 1 ELSE 0 END) / COUNT(*) AS return_rate FROM data GROUP BY product_name ORDER BY return_rate DESC",
	},
	{
		Name:  "average-order-value",
		Text:  "What is the average value of a transaction?",
		Query: "SELECT AVG(quantity * unit_price) AS average_order_value FROM data",
	},
	{
		Name:  "payment-methods",
		Text:  "How do customers pay?",
		Query: "SELECT payment_method, COUNT(*) AS transactions FROM data GROUP BY payment_method ORDER BY transactions DESC",
	},
	{
		Name:  "transactions-by-store",
		Text:  "How many transactions does each store handle?",
		Query: "SELECT store_location, COUNT(*) AS transactions FROM data GROUP BY store_location ORDER BY transactions DESC",
	},
	{
		Name:  "returned-transactions",
		Text:  "Which transactions were returned?",
		Query: "SELECT * FROM data WHERE return_status = 1",
	},
}

// Questions returns the catalog in its fixed order. The slice is a copy.
func Questions() []Question {
	out := make([]Question, len(questions))
	copy(out, questions)
	return out
}

// Lookup returns the query for the named question. Names are matched
// case-insensitively; spaces and underscores may stand in for dashes.
func Lookup(name string) (string, error) {
	key := normalizeName(name)
	for _, q := range questions {
		if q.Name == key {
			return q.Query, nil
		}
	}
	return "", fmt.Errorf("unknown question %q (run 'retailq questions' for the list)", name)
}

func normalizeName(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	return strings.NewReplacer(" ", "-", "_", "-").Replace(name)
}
