package banner

import (
	"fmt"

	"blogchat/pkg/config"
)

const banner = `
██████╗ ██╗      ██████╗  ██████╗  ██████╗██╗  ██╗ █████╗ ████████╗
██╔══██╗██║     ██╔═══██╗██╔════╝ ██╔════╝██║  ██║██╔══██╗╚══██╔══╝
██████╔╝██║     ██║   ██║██║  ███╗██║     ███████║███████║   ██║
██╔══██╗██║     ██║   ██║██║   ██║██║     ██╔══██║██╔══██║   ██║
██████╔╝███████╗╚██████╔╝╚██████╔╝╚██████╗██║  ██║██║  ██║   ██║
╚═════╝ ╚══════╝ ╚═════╝  ╚═════╝  ╚═════╝╚═╝  ╚═╝╚═╝  ╚═╝   ╚═╝
`

// PrintWithEff prints the startup banner with the effective config and
// a few operational hints.
func PrintWithEff(eff config.EffectiveConfigResult, version string) {
	addr := eff.Addr
	if addr == "" && eff.Config != nil {
		addr = eff.Config.Addr()
	}
	src := eff.Source
	if src == "" {
		src = "flags"
	}

	fmt.Print(banner)
	fmt.Println("== Config =====================================================")
	fmt.Printf("Listen:   %s\n", addr)
	fmt.Printf("DB Path:  %s\n", eff.DBPath)
	fmt.Printf("Content:  %s\n", eff.ContentDir)
	if version != "" {
		fmt.Printf("Version:  %s\n", version)
	}
	fmt.Printf("Config:   %s\n", src)

	fmt.Println("\n== Endpoints ==================================================")
	fmt.Println("GET  /                     - Post index")
	fmt.Println("GET  /<slug>               - Post page with chat")
	fmt.Println("GET  /ws/chat?room=<slug>  - Chat websocket")
	fmt.Println("POST /api/set-username     - Pick a display name")
	fmt.Println("GET  /api/messages?room=<slug>&limit=<n> - Recent messages")

	if eff.Config != nil {
		fmt.Println("\n== Production? =================================================")
		if eff.Config.Auth.JWTSecret == "" {
			fmt.Println("Auth: no jwt_secret set; all visitors chat as Guest")
		}
		if !eff.Config.Weather.Enabled {
			fmt.Println("Weather enrichment: disabled")
		}
		if eff.Config.Server.TLS.CertFile == "" {
			fmt.Println("TLS: disabled (fine behind a terminating proxy)")
		}
	}
	fmt.Println()
}
