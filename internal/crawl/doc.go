// Package crawl implements bounded same-origin site discovery: robots.txt
// policy checks, sitemap seeding, and a breadth-first crawl that produces a
// deduplicated page listing for the ingestion dashboard.
package crawl
