package ports

import websocketdto "instantfix/internal/dispatch-service/core/domain/websocket_dto"

// INotifyWebsocket delivers an event to every live connection registered
// under a user id. No connections registered is not an error; the durable
// notification row covers offline users.
type INotifyWebsocket interface {
	WriteToUser(userId string, msg websocketdto.Event)
}
