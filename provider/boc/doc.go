// Package boc provides the Bank of China foreign exchange quotation provider.
//
// # Source
//
// URL: https://www.bankofchina.com/sourcedb/whpj/enindex_1619.html
//
// The page renders one HTML table with a row per currency. The cells of the
// target row are positional:
//
//	Currency | Buying | Cash Buying | Selling | Cash Selling | Middle | Pub Time
//
// Rates are kept as the exact strings rendered on the page (RMB per 100 units).
//
// # Row lookup
//
// Rows are located with an ordered list of matchers. Each matcher scans every
// row of every table before the next one is tried:
//   - exact: the first cell equals the currency code (case-insensitive)
//   - contains: the first cell contains the code or an alias, and still
//     contains the code once upper-cased
//
// # Publish time
//
// The "Pub Time" cell is normalized to YYYY-MM-DD and YYYY-MM-DD HH:MM:SS.
// Slash and hyphen separated dates, with or without seconds, are accepted.
//
// # Fetching
//
// The page is fetched with a bounded timeout and a fixed number of attempts,
// separated by a fixed delay. The SHA-256 of the page body is kept for the
// capture log.
package boc
