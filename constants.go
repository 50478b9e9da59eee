package relay

const version = "1.4.0"

const (
	apiPrefix       = "/api/v1"
	runtimeDataPath = "/runtime_data"
)

const csrfCookieName = "csrftoken"
