package messaging

// Subject constants for the AxisIR message bus.
// Follow the pattern: {domain}.{resource}.{action}
const (
	// Incident lifecycle, published by the respond service
	SubjectRespondIncidentsCreated = "respond.incidents.created"
	SubjectRespondIncidentsUpdated = "respond.incidents.updated"
	SubjectRespondIncidentsClosed  = "respond.incidents.closed"

	// Indicator linked to a case/asset
	SubjectRespondIndicatorsLinked = "respond.indicators.linked"

	// Asset group membership changed (assign or unassign)
	SubjectRespondAssetsGrouped = "respond.assets.grouped"
)

// HeaderRequestID carries the originating HTTP request id on published messages.
const HeaderRequestID = "X-Request-ID"
