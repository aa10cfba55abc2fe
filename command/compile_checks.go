package command

import gocmd "github.com/goliatone/go-command"

var (
	_ gocmd.Commander[IngestLeadMessage]        = (*IngestLeadCommand)(nil)
	_ gocmd.Commander[SeedReferenceDataMessage] = (*SeedReferenceDataCommand)(nil)
)
