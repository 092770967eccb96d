package explorer

import (
	"fmt"
	"net/url"
)

const (
	txListTemplate = "%sapi?module=account&action=txlist&address=%s&startblock=0&endblock=99999999&sort=asc&apikey=%s"
	abiTemplate    = "%sapi?module=contract&action=getabi&address=%s&apikey=%s"
	sourcifyPath   = "%scheck-by-addresses?addresses=%s&chainIds=%d"
)

// ContractTxsURL asks for the first page of `offset` transactions of a
// contract. A full page means at least `offset` transactions exist.
func ContractTxsURL(baseURL, apiKey, address string, offset int) string {
	return pagedTxListURL(baseURL, apiKey, address, 1, offset)
}

// FirstTxURL asks for the oldest transaction of an address.
func FirstTxURL(baseURL, apiKey, address string) string {
	return pagedTxListURL(baseURL, apiKey, address, 1, 1)
}

// AccountTxsURL asks for the whole transaction history of an address.
func AccountTxsURL(baseURL, apiKey, address string) string {
	return fmt.Sprintf(txListTemplate, baseURL, url.QueryEscape(address), url.QueryEscape(apiKey))
}

// ContractABIURL asks for the verified ABI of a contract.
func ContractABIURL(baseURL, apiKey, address string) string {
	return fmt.Sprintf(abiTemplate, baseURL, url.QueryEscape(address), url.QueryEscape(apiKey))
}

// SourcifyCheckURL asks Sourcify whether address is verified on the given
// numeric chain.
func SourcifyCheckURL(baseURL, address string, chainRef int64) string {
	return fmt.Sprintf(sourcifyPath, baseURL, url.QueryEscape(address), chainRef)
}

func pagedTxListURL(baseURL, apiKey, address string, page, offset int) string {
	return AccountTxsURL(baseURL, apiKey, address) + fmt.Sprintf("&page=%d&offset=%d", page, offset)
}
