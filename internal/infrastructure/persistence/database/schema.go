package database

var tables = []string{
	`CREATE TABLE IF NOT EXISTS sales (
		id TEXT PRIMARY KEY,
		package_id TEXT NOT NULL,
		session_id TEXT NOT NULL,
		unit_price TEXT NOT NULL,
		sold_at INTEGER NOT NULL
	)`,
}

var indexes = []string{
	`CREATE INDEX IF NOT EXISTS idx_sales_sold_at ON sales(sold_at)`,
	`CREATE INDEX IF NOT EXISTS idx_sales_package_id ON sales(package_id)`,
}
