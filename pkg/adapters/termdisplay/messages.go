package termdisplay

import "github.com/ideamans/go-l10n"

func init() {
	l10n.Register("ja", l10n.LexiconMap{
		"space: pause  q: quit": "スペース: 一時停止  q: 終了",
	})
}
