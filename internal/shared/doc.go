// Package shared holds helpers used across the PAYG extraction codebase
// that do not belong to a single layer.
//
// # Test Utilities
//
// The testutil subpackage provides:
//
//   - BufferedSlogHandler and NewTestLogger for asserting on structured logs
//   - ExportFixture builders that render counter exports as CSV text or
//     .xlsx workbooks, metadata rows included
//
// Example usage:
//
//	func TestExtract(t *testing.T) {
//	    logger, handler := testutil.NewTestLogger(t)
//	    data := testutil.SiteExport("Users (number)",
//	        []string{"2024-01-01 20:00:00", "60", "NE-sm1-01", "5"},
//	    ).CSV()
//	    // feed data to the code under test, then
//	    testutil.AssertNoErrors(t, handler)
//	}
package shared
