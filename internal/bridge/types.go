package bridge

import "encoding/json"

// #region envelopes
// envelope is an outbound wire message to the extension.
type envelope struct {
	Type string `json:"type"`
	Data any    `json:"data,omitempty"`
}

// inbound is a wire message from the extension; Data is decoded per Type.
type inbound struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// #endregion envelopes

// #region badge-command
// badgeCommand tells the extension to apply a badge frame to a tab's action icon.
type badgeCommand struct {
	TabID int    `json:"tab_id"`
	Icon  string `json:"icon"`
	Text  string `json:"text"`
	Color string `json:"color"`
}

// #endregion badge-command

// #region tab-events
// tabEvent identifies a single tab in a lifecycle message.
type tabEvent struct {
	TabID int `json:"tab_id"`
}

// tabSnapshot is the full open-tab set, sent by the extension on connect.
type tabSnapshot struct {
	TabIDs []int `json:"tab_ids"`
}

// #endregion tab-events
