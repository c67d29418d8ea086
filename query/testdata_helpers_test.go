package query

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/parquet-go/parquet-go"
)

// SaleRow is one retail transaction as exported by a point-of-sale system,
// with display-style column names
type SaleRow struct {
	TransactionID int64   `parquet:"Transaction ID"`
	ProductName   string  `parquet:"Product Name"`
	Category      string  `parquet:"Product Category"`
	StoreLocation string  `parquet:"Store Location"`
	Quantity      int64   `parquet:"Quantity"`
	UnitPrice     float64 `parquet:"Unit Price"`
	ReturnStatus  bool    `parquet:"Return Status"`
	PaymentMethod string  `parquet:"Payment Method"`
}

// sampleSales returns five transactions over three stores and products
func sampleSales() []SaleRow {
	return []SaleRow{
		{1, "Rice", "Grocery", "Delhi", 2, 40.0, false, "Cash"},
		{2, "Soap", "Personal Care", "Mumbai", 1, 25.5, true, "UPI"},
		{3, "Rice", "Grocery", "Delhi", 3, 40.0, false, "Card"},
		{4, "Tea", "Grocery", "Chennai", 1, 120.0, true, "Cash"},
		{5, "Soap", "Personal Care", "Delhi", 4, 25.5, false, "UPI"},
	}
}

// createSalesParquetFile writes rows to a temporary parquet file and
// returns its path
func createSalesParquetFile(t *testing.T, rows []SaleRow) string {
	t.Helper()
	testFile := filepath.Join(t.TempDir(), "sales.parquet")

	f, err := os.Create(testFile)
	if err != nil {
		t.Fatalf("failed to create test file: %v", err)
	}
	defer func() { _ = f.Close() }()

	writer := parquet.NewGenericWriter[SaleRow](f)
	if _, err := writer.Write(rows); err != nil {
		t.Fatalf("failed to write test data: %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("failed to close writer: %v", err)
	}

	return testFile
}
