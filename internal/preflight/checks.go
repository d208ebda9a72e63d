package preflight

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"time"

	"golang.org/x/sys/unix"

	"mediatasks/internal/seriescache"
	"mediatasks/internal/services"
	"mediatasks/internal/tvdb"
)

const tvdbCheckName = "TheTVDB"

// CheckTVDB verifies that TheTVDB is reachable and accepts the API key. It
// performs a single anonymous login with a 10-second timeout.
func CheckTVDB(ctx context.Context, apiKey, baseURL, language string) Result {
	client, err := tvdb.New(apiKey, baseURL, language, tvdb.WithTimeout(10*time.Second))
	if err != nil {
		return Result{Name: tvdbCheckName, Detail: err.Error()}
	}

	checkCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if _, err := client.Login(checkCtx, tvdb.Credentials{}); err != nil {
		return Result{Name: tvdbCheckName, Detail: summarizeTVDBError(err)}
	}
	return Result{Name: tvdbCheckName, Passed: true, Detail: "API reachable"}
}

// CheckSeriesCache verifies that the series lookup database opens and its
// schema is current.
func CheckSeriesCache(ctx context.Context, path string) Result {
	const name = "Series cache"

	store, err := seriescache.Open(path)
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: %v)", path, err)}
	}
	defer store.Close()

	records, err := store.List(ctx)
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (%d series cached)", path, len(records))}
}

// CheckDirectoryAccess verifies that the directory exists and is readable/writable.
func CheckDirectoryAccess(name, path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

func summarizeTVDBError(err error) string {
	if errors.Is(err, context.DeadlineExceeded) {
		return "login timed out (TheTVDB unresponsive)"
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return "login timed out (TheTVDB unreachable)"
	}
	if errors.Is(err, services.ErrRemoteService) {
		return fmt.Sprintf("login failed (%v)", err)
	}
	return err.Error()
}
