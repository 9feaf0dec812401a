package logging

const (
	EventPlayerConnected    EventType = "player_connected"
	EventPlayerDisconnected EventType = "player_disconnected"
	EventBlockEdited        EventType = "block_edited"
	EventProtocolError      EventType = "protocol_error"
)

// PlayerConnected records a completed handshake for the given player id.
func PlayerConnected(playerID string) Event {
	return Event{
		Type:     EventPlayerConnected,
		Severity: SeverityInfo,
		Actor:    playerID,
	}
}

// PlayerDisconnected records the teardown of a connection.
func PlayerDisconnected(playerID string) Event {
	return Event{
		Type:     EventPlayerDisconnected,
		Severity: SeverityInfo,
		Actor:    playerID,
	}
}

// BlockEdited records a world delta applied on behalf of a player.
func BlockEdited(playerID string, face, layer int) Event {
	return Event{
		Type:     EventBlockEdited,
		Severity: SeverityDebug,
		Actor:    playerID,
		Payload:  map[string]any{"face": face, "layer": layer},
	}
}

// ProtocolError records a dropped client frame that failed to parse or
// validate. The connection stays open.
func ProtocolError(playerID string, err error) Event {
	payload := map[string]any{}
	if err != nil {
		payload["error"] = err.Error()
	}
	return Event{
		Type:     EventProtocolError,
		Severity: SeverityWarn,
		Actor:    playerID,
		Payload:  payload,
	}
}
