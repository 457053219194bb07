package domain

// AssociationTable names one content-to-tag link table.
type AssociationTable string

// Link tables. Merge and dedup treat both the same way.
const (
	AssociationLegacy  AssociationTable = "legacy"
	AssociationCurrent AssociationTable = "current"
)

// AssociationTables is the fixed processing order for link tables.
var AssociationTables = []AssociationTable{AssociationLegacy, AssociationCurrent}
