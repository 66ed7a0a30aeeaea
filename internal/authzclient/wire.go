package authzclient

// principalWire is the {id, deviceId} object sent with every request.
type principalWire struct {
	ID       string `json:"id"`
	DeviceID string `json:"deviceId"`
}

// queryWire is one entry of the outbound queries array. AssetID is omitted
// for search requests, which query by action alone.
type queryWire struct {
	AssetID string `json:"assetId,omitempty"`
	Action  string `json:"action"`
}

type requestWire struct {
	Principal principalWire `json:"principal"`
	Queries   []queryWire   `json:"queries"`
}

// decisionWire is one entry of the inbound decisions array.
type decisionWire struct {
	Decision string `json:"decision"`
	Reason   string `json:"reason"`
	AssetID  string `json:"assetId"`
}

type errorWire struct {
	Message string `json:"message"`
}

type responseWire struct {
	Decisions []decisionWire `json:"decisions"`
	Error     *errorWire     `json:"error"`
}

const decisionAllow = "Allow"
