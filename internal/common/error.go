package common

import "fmt"

var (
	ErrGameNotFoundError        = fmt.Errorf("game not found")
	ErrTrackingNotFoundError    = fmt.Errorf("download tracking not found")
	ErrMappingNotFoundError     = fmt.Errorf("remote path mapping not found")
	ErrNoDownloadClientError    = fmt.Errorf("no download client for protocol")
	ErrUnknownImplementation    = fmt.Errorf("unknown implementation")
	ErrDefinitionNotFoundError  = fmt.Errorf("definition not found")
	ErrAllDownloadClientsFailed = fmt.Errorf("all download clients failed")
)
