package appchains

import (
	"cmp"
	"fmt"
	"slices"

	"github.com/adamwoolhether/appchains/internal/validate"
	"github.com/adamwoolhether/appchains/job"
)

// Endpoint names accepted by the service.
const (
	EndpointStartApp      = "StartApp"
	EndpointStartAppBatch = "StartAppBatch"
)

// dataSourceParam names the parameter carrying the data source id.
const dataSourceParam = "dataSourceId"

// Chain names one chain to run against a data source.
type Chain struct {
	AppCode      string `json:"AppCode" validate:"required"`
	DataSourceID string `json:"DataSourceID" validate:"required"`
}

// Parameter is one named chain argument.
type Parameter struct {
	Name  string `json:"Name" validate:"required"`
	Value string `json:"Value"`
}

// ChainRequest is the submission body for a single chain.
type ChainRequest struct {
	AppCode string      `json:"AppCode" validate:"required"`
	Pars    []Parameter `json:"Pars" validate:"dive"`
}

// NewChainRequest builds the body that runs appCode on dataSourceID.
func NewChainRequest(appCode, dataSourceID string) ChainRequest {
	return ChainRequest{
		AppCode: appCode,
		Pars:    []Parameter{{Name: dataSourceParam, Value: dataSourceID}},
	}
}

// BatchRequest is the submission body for several chains.
type BatchRequest struct {
	Pars []ChainRequest `json:"Pars" validate:"dive"`
}

// NewBatchRequest builds the batch body, keeping the order of chains.
func NewBatchRequest(chains []Chain) BatchRequest {
	pars := make([]ChainRequest, len(chains))
	for i, ch := range chains {
		pars[i] = NewChainRequest(ch.AppCode, ch.DataSourceID)
	}
	return BatchRequest{Pars: pars}
}

// ChainsFromMap turns an app code to data source mapping into chains
// ordered by app code.
func ChainsFromMap(m map[string]string) []Chain {
	chains := make([]Chain, 0, len(m))
	for code, ds := range m {
		chains = append(chains, Chain{AppCode: code, DataSourceID: ds})
	}
	slices.SortFunc(chains, func(a, b Chain) int { return cmp.Compare(a.AppCode, b.AppCode) })
	return chains
}

// checkChains rejects batches that name a chain twice or leave a field empty.
func checkChains(chains []Chain) error {
	seen := make(map[string]struct{}, len(chains))
	for i, ch := range chains {
		if err := validate.Struct(ch); err != nil {
			return fmt.Errorf("chain[%d]: %w", i, err)
		}

		if _, ok := seen[ch.AppCode]; ok {
			return fmt.Errorf("%w: %s", ErrDuplicateKey, ch.AppCode)
		}
		seen[ch.AppCode] = struct{}{}
	}

	return nil
}

// batchStatusRequest is the body of the batch status query.
type batchStatusRequest struct {
	JobIds []job.ID `json:"JobIds"`
}
