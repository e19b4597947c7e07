package logging

// Shared structured log field names used across the service.
const (
	FieldService   = "service"
	FieldComponent = "component"
	FieldType      = "type"
	FieldPort      = "port"
	FieldUserId    = "user_id"
	FieldTmdbId    = "tmdb_id"
)
