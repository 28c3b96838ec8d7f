// Package main provides the report command line tool.
//
// Usage:
//
//	report generate --type CSV --user alice --role ADMIN --items items.xlsx
//	report generate --type HTML --user bob --driver postgres --dsn "$DSN" --out report.html
//	report token --user alice --role ADMIN
package main

func main() {
	Execute()
}
