package models

// RemoteDescriptor identifies the remote file that holds the product list
// plus the credentials needed to read and write it. LastSHA is the opaque
// version token returned by the last successful read or write; the file
// store requires it on updates to detect concurrent modification.
type RemoteDescriptor struct {
	Owner   string `json:"owner"`
	Repo    string `json:"repo"`
	Path    string `json:"path"`
	Token   string `json:"token"`
	LastSHA string `json:"lastSha,omitempty"`
}

// Configured reports whether enough of the descriptor is set to attempt a
// remote call.
func (d RemoteDescriptor) Configured() bool {
	return d.Token != "" && d.Repo != ""
}
