package theme

import (
	"fmt"
)

// Banner returns the terminal banner.
func Banner() string {
	const blue = "\033[34m"
	const cyan = "\033[36m"
	const reset = "\033[0m"

	art := "" +
		blue + "  __      __.__            __           ____ ___      ._.\n" + reset +
		blue + " /  \\    /  \\  |__ _____ _/  |_  ______|    |   \\____ | |\n" + reset +
		cyan + " \\   \\/\\/   /  |  \\\\__  \\\\   __\\/  ___/|    |   /\\__ \\| |\n" + reset +
		cyan + "  \\        /|   Y  \\/ __ \\|  |  \\___ \\ |    |  /  / __ \\\\|\n" + reset +
		blue + "   \\__/\\  / |___|  (____  /__| /____  >|______/  (____  /_\n" + reset +
		blue + "        \\/       \\/     \\/          \\/                \\/\\/\n" + reset +
		"   a terminal & web client for the WhatsUp feed\n"
	return art
}

// PrintBanner prints the banner to stdout.
func PrintBanner() {
	fmt.Print(Banner())
}
