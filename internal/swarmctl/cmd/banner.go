package cmd

import (
	"fmt"

	"github.com/kiosk404/swarmscope/internal/pkg/version"
)

const bannerText = `
  ____                                                      
 / ___|_      ____ _ _ __ _ __ ___  ___  ___ ___  _ __   ___ 
 \___ \ \ /\ / / _' | '__| '_ ' _ \/ __|/ __/ _ \| '_ \ / _ \
  ___) \ V  V / (_| | |  | | | | | \__ \ (_| (_) | |_) |  __/
 |____/ \_/\_/ \__,_|_|  |_| |_| |_|___/\___\___/| .__/ \___|
                                                 |_|         
        Multi-agent swarm run viewer
`

// Banner returns the CLI banner string.
func Banner() string {
	return fmt.Sprintf("%s\n  Version: %s\n", bannerText, version.Get().String())
}
