package version

var (
	// GitCommit is the current HEAD set using ldflags.
	GitCommit string

	// Version is the built softwares version.
	Version string = OBSemVer
)

func init() {
	if GitCommit != "" {
		Version += "-" + GitCommit
	}
}

const (
	// OBSemVer is the current version of the order book node.
	// It's the Semantic Version of the software.
	OBSemVer = "0.1.0"
)

// Protocol is used for implementation agnostic versioning.
type Protocol uint64

// Uint64 returns the Protocol version as a uint64.
func (p Protocol) Uint64() uint64 {
	return uint64(p)
}

// AppProtocol versions the state layout and the matching rules. Nodes with
// different app protocols compute different app hashes.
const AppProtocol Protocol = 1

// App includes the protocol and software version for the application.
// This information is included in ResponseInfo.
type App struct {
	Protocol Protocol `json:"protocol"`
	Software string   `json:"software"`
}

// Current returns the version of the running application.
func Current() App {
	return App{Protocol: AppProtocol, Software: Version}
}
