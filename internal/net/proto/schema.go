package proto

// Protocol models every frame shape in one document. It exists for the
// schema generator in cmd/schema, which turns it into a machine-readable
// JSON Schema for client and tooling validation.
type Protocol struct {
	Init        Init          `json:"init" jsonschema:"description=Server to new client handshake"`
	PlayerJoin  PlayerJoin    `json:"playerJoin" jsonschema:"description=Server to client join announcement"`
	WorldState  WorldState    `json:"worldState" jsonschema:"description=Server to new client world edit replay"`
	BlockChange BlockChange   `json:"blockChange" jsonschema:"description=World edit relayed to other clients"`
	PlayerMove  PlayerMove    `json:"playerMove" jsonschema:"description=Motion update relayed to other clients"`
	PlayerLeave PlayerLeave   `json:"playerLeave" jsonschema:"description=Departure notice to remaining clients"`
	Client      ClientMessage `json:"client" jsonschema:"description=Client to server frame in decoded form"`
}
