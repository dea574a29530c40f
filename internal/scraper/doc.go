// Package scraper provides HTTP fetching and HTML parsing for UnionFacts membership counts.
//
// UnionFacts has no public API. The scraper fetches the IBEW locals listing page once,
// decodes it to UTF-8, and reads the first table under div.tab-content. Each row names a
// union unit, its location and its reported member count. Only rows designating a
// numbered local ("Local 3") are kept; districts, councils and other units are dropped.
package scraper
