package model

// SyncConfig holds the gist backup credentials. Not a domain record.
type SyncConfig struct {
	GithubToken  string `json:"githubToken"`
	GistID       string `json:"gistId"`
	LastSyncTime string `json:"lastSyncTime,omitempty"`
}

// Dataset is the full snapshot serialized into the remote backup document.
type Dataset struct {
	Assets    []Asset          `json:"assets"`
	Trades    []OptionTrade    `json:"trades"`
	ManualPnL []PnLEntry       `json:"manualPnL"`
	Airdrops  []AirdropProject `json:"airdrops"`
	Timestamp string           `json:"timestamp"`
}
