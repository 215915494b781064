package storemock

//go:generate mockgen -destination=storemock.go -package=storemock bilancio/internal/store Store,Provider
