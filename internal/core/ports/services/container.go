package services

// ServiceContainer bundles the service interfaces handed to the HTTP layer.
type ServiceContainer struct {
	Account  AccountSvcFacade
	Transfer TransferSvc
	History  HistorySvc
}
