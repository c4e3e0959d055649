// Package version holds build information injected with -ldflags
package version

import (
	"fmt"
	"runtime"
)

// Set at build time:
//
//	go build -ldflags "-X github.com/justyntemme/brahmand-t/internal/version.GitRelease=v1.2.0"
var (
	GitRelease    = "dev"
	GitCommit     = "unknown"
	GitCommitDate = "unknown"
)

// GoInfo is the toolchain and platform the binary was built for
var GoInfo = fmt.Sprintf("%s %s/%s", runtime.Version(), runtime.GOOS, runtime.GOARCH)

// UserAgent is sent with asset requests
func UserAgent() string {
	return "brahmand-t/" + GitRelease
}
