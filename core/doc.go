// Package core holds the lead ingestion domain: the inbound payload shape,
// the stored records, the contracts the pipeline drives (lead store, tenant
// directory, drafter, sender, dispatch log), and the ingestion orchestrator
// itself. Transport, persistence, and outbound delivery live in sibling
// packages and plug in through the option builder.
package core
