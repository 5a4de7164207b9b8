package domain

// ConnectionState is the lifecycle of the push channel.
type ConnectionState string

const (
	ConnNotConnected ConnectionState = "not-connected"
	ConnConnecting   ConnectionState = "connecting"
	ConnConnected    ConnectionState = "connected"
	ConnReconnecting ConnectionState = "reconnecting"
	ConnFailed       ConnectionState = "failed"
	ConnDisconnected ConnectionState = "disconnected"
)
