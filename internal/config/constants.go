package config

// DefaultDatabasePath is where the catalog database lives unless overridden
// via the DATABASE_PATH environment variable.
const DefaultDatabasePath = "./librarian.db"

// DefaultLoanPeriodDays is the loan length used when a request does not
// specify a due date.
const DefaultLoanPeriodDays = 14
