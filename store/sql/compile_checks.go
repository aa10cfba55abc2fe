package sqlstore

import (
	"github.com/goliatone/go-leads/core"
	"github.com/goliatone/go-leads/tenants"
)

var (
	_ core.LeadStore              = (*LeadStore)(nil)
	_ core.OutreachLog            = (*OutreachStore)(nil)
	_ core.LeadEventLog           = (*LeadEventStore)(nil)
	_ core.StoreProvider          = (*StoreFactory)(nil)
	_ core.RepositoryStoreFactory = (*StoreFactory)(nil)
	_ tenants.Store               = (*TenantStore)(nil)
)
