package reconcile

import "strings"

// headerAliases maps lower-cased spreadsheet header spellings to canonical
// field ids. These cover the hand-kept tracking sheets this system imports;
// headers not listed here fall back to schema label/id matching.
var headerAliases = map[string]string{
	"entry date":                 "entryDate",
	"equipment description":      "equipmentDescription",
	"part number":                "partNumber",
	"serial number/imei":         "serialNumber",
	"serial number / imei":       "serialNumber",
	"serial number":              "serialNumber",
	"imei":                       "serialNumber",
	"asset tag":                  "assetTag",
	"type (device/accessory/pc)": "deviceType",
	"device type":                "deviceType",
	"released to":                "releasedTo",
	"core id":                    "coreId",
	"manager":                    "manager",
	"gate pass (y/n)":            "gatePass",
	"gate pass":                  "gatePass",
	"returned":                   "returned",
	"current owner":              "currentOwner",
	"owner":                      "currentOwner",
	"comments":                   "comments",
	"technical comments":         "comments",
	"location":                   "location",
	"status":                     "status",
	"model":                      "model",
}

// counterAliases are sequence/quantity headers that never populate a field,
// regardless of schema contents.
var counterAliases = map[string]struct{}{
	"no":       {},
	"qty":      {},
	"quantity": {},
	"sr no":    {},
	"s.no":     {},
	"#":        {},
}

// counterHeader reports whether the raw header is a pure row counter.
func counterHeader(header string) bool {
	_, ok := counterAliases[strings.ToLower(strings.TrimSpace(header))]
	return ok
}

// aliasFieldID resolves a raw header through the alias table.
func aliasFieldID(header string) (string, bool) {
	id, ok := headerAliases[strings.ToLower(strings.TrimSpace(header))]
	return id, ok
}
