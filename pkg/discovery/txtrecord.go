package discovery

import (
	"fmt"
	"strings"
)

// TXTRecordMap is a map of TXT record key-value pairs.
type TXTRecordMap map[string]string

// EncodeBrokerTXT creates TXT records for broker advertisement.
func EncodeBrokerTXT(info *BrokerInfo) TXTRecordMap {
	txt := make(TXTRecordMap)

	txt[TXTKeyName] = info.Name

	if info.Version != "" {
		txt[TXTKeyVersion] = info.Version
	}
	if info.TLS {
		txt[TXTKeyTLS] = "1"
	}

	return txt
}

// DecodeBrokerTXT parses TXT records from a broker advertisement.
func DecodeBrokerTXT(txt TXTRecordMap) (*BrokerInfo, error) {
	info := &BrokerInfo{}

	var ok bool
	info.Name, ok = txt[TXTKeyName]
	if !ok || info.Name == "" {
		return nil, fmt.Errorf("%w: %s", ErrMissingRequired, TXTKeyName)
	}

	info.Version = txt[TXTKeyVersion]
	info.TLS = txt[TXTKeyTLS] == "1"

	return info, nil
}

// TXTRecordsToStrings converts a TXTRecordMap to a slice of "key=value"
// strings, the format mDNS libraries use.
func TXTRecordsToStrings(txt TXTRecordMap) []string {
	result := make([]string, 0, len(txt))
	for k, v := range txt {
		result = append(result, fmt.Sprintf("%s=%s", k, v))
	}
	return result
}

// StringsToTXTRecords parses a slice of "key=value" strings into a
// TXTRecordMap.
func StringsToTXTRecords(strs []string) TXTRecordMap {
	txt := make(TXTRecordMap)
	for _, s := range strs {
		parts := strings.SplitN(s, "=", 2)
		if len(parts) == 2 {
			txt[parts[0]] = parts[1]
		} else if len(parts) == 1 && parts[0] != "" {
			// Key without value (boolean flag)
			txt[parts[0]] = ""
		}
	}
	return txt
}
