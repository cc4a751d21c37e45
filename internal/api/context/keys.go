package context

type Key string

const SessionID Key = "session_id"
