package aggregates

// WriteTxOwnership says who opens the transaction around a write.
type WriteTxOwnership string

const (
	// WriteTxOwnedByAggregate: the aggregate's write methods open the transaction.
	WriteTxOwnedByAggregate WriteTxOwnership = "aggregate_owned"
	// WriteTxSingleStatement: each write is one statement and needs no transaction.
	WriteTxSingleStatement WriteTxOwnership = "single_statement"
)

// ReadPolicy says where reads for an aggregate live.
type ReadPolicy string

const (
	ReadPolicyInvariantScoped  ReadPolicy = "invariant_scoped_reads"
	ReadPolicyTableRepoQueries ReadPolicy = "table_repo_queries"
)

type Contract struct {
	Name             string
	WriteTxOwnership WriteTxOwnership
	ReadPolicy       ReadPolicy
	Notes            string
}

// Aggregate is implemented by services that own a write boundary.
type Aggregate interface {
	Contract() Contract
}

func (c Contract) RequiresAggregateOwnedTx() bool {
	return c.WriteTxOwnership == WriteTxOwnedByAggregate
}
