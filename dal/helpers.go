package dal

import "encoding/json"

// PrintPrettyJSON renders any value as indented JSON for log output.
func PrintPrettyJSON(v interface{}) string {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return ""
	}
	return string(data)
}
