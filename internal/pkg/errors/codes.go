package errors

import "net/http"

var (
	ErrInvalidCoordinates = New(
		"INVALID_COORDINATES",
		"Invalid coordinates provided",
		http.StatusBadRequest,
	)

	ErrInvalidRadius = New(
		"INVALID_RADIUS",
		"Invalid radius: must be between 100 and 50000 meters",
		http.StatusBadRequest,
	)

	ErrInvalidRequest = New(
		"INVALID_REQUEST",
		"Invalid request parameters",
		http.StatusBadRequest,
	)

	ErrIntelNotCached = New(
		"INTEL_NOT_CACHED",
		"No cached intelligence for this location",
		http.StatusNotFound,
	)

	ErrProviderNotConfigured = New(
		"PROVIDER_NOT_CONFIGURED",
		"POI provider API key is not configured",
		http.StatusServiceUnavailable,
	)

	ErrCacheError = New(
		"CACHE_ERROR",
		"Cache operation failed",
		http.StatusInternalServerError,
	)

	ErrInternalServer = New(
		"INTERNAL_SERVER_ERROR",
		"Internal server error",
		http.StatusInternalServerError,
	)
)
