// Package verflag defines the --version flag shared by the binaries.
package verflag

import (
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/spf13/pflag"

	"github.com/kiosk404/swarmscope/internal/pkg/version"
)

type versionValue int

const (
	VersionFalse versionValue = 0
	VersionTrue  versionValue = 1
	VersionRaw   versionValue = 2
)

const strRawVersion = "raw"

func (v *versionValue) IsBoolFlag() bool { return true }

func (v *versionValue) Get() interface{} { return *v }

func (v *versionValue) Set(s string) error {
	if s == strRawVersion {
		*v = VersionRaw
		return nil
	}
	boolVal, err := strconv.ParseBool(s)
	if boolVal {
		*v = VersionTrue
	} else {
		*v = VersionFalse
	}
	return err
}

func (v *versionValue) String() string {
	if *v == VersionRaw {
		return strRawVersion
	}
	return fmt.Sprintf("%v", bool(*v == VersionTrue))
}

func (v *versionValue) Type() string { return "version" }

const versionFlagName = "version"

var versionFlag = VersionFalse

// AddFlags registers this package's flags on arbitrary FlagSets, such that they point to the
// same value as the global flags.
func AddFlags(fs *pflag.FlagSet) {
	fs.AddFlag(&pflag.Flag{
		Name:        versionFlagName,
		Usage:       "Print version information and quit.",
		Value:       &versionFlag,
		DefValue:    versionFlag.String(),
		NoOptDefVal: "true",
	})
}

// PrintAndExitIfRequested will check if the -version flag was passed
// and, if so, print the version and exit.
func PrintAndExitIfRequested(out io.Writer) {
	switch versionFlag {
	case VersionRaw:
		fmt.Fprintln(out, version.Get().Text())
		os.Exit(0)
	case VersionTrue:
		fmt.Fprintf(out, "%s\n", version.Get())
		os.Exit(0)
	}
}
