package aggregates

var TaskContract = Contract{
	Name:             "Catalog.TaskAggregate",
	WriteTxOwnership: WriteTxOwnedByAggregate,
	ReadPolicy:       ReadPolicyTableRepoQueries,
	Notes:            "Owns a task together with its variants and their item memberships.",
}

var SubdatasetContract = Contract{
	Name:             "Catalog.SubdatasetAggregate",
	WriteTxOwnership: WriteTxOwnedByAggregate,
	ReadPolicy:       ReadPolicyTableRepoQueries,
	Notes:            "Owns a subdataset, its processed episodes and its variant links.",
}

var RawEpisodeContract = Contract{
	Name:             "Catalog.RawEpisodeAggregate",
	WriteTxOwnership: WriteTxOwnedByAggregate,
	ReadPolicy:       ReadPolicyInvariantScoped,
	Notes:            "Checks the owning subdataset exists before writing a raw episode.",
}

var ItemContract = Contract{
	Name:             "Catalog.ItemAggregate",
	WriteTxOwnership: WriteTxOwnedByAggregate,
	ReadPolicy:       ReadPolicyTableRepoQueries,
	Notes:            "Owns item rows; variant membership is written through the task aggregate.",
}

var SeedContract = Contract{
	Name:             "Catalog.SeedAggregate",
	WriteTxOwnership: WriteTxOwnedByAggregate,
	ReadPolicy:       ReadPolicyInvariantScoped,
	Notes:            "Applies a whole seed file in one transaction.",
}

// CatalogContracts lists every write boundary in declaration order.
func CatalogContracts() []Contract {
	return []Contract{TaskContract, SubdatasetContract, RawEpisodeContract, ItemContract, SeedContract}
}
