package logger

import "github.com/ideamans/go-l10n"

func init() {
	l10n.Register("ja", l10n.LexiconMap{
		// Configuration summary
		"== Configuration =====================================": "== 設定 ===============================================",
		" Input File   : %s": " 入力ファイル : %s",
		" Width        : %d": " 幅           : %d",
		" Height       : %d": " 高さ         : %d",
		" Frame Rate   : %g": " フレームレート: %g",
		" Frame Number : %d": " フレーム数   : %d",
		" Access Mode  : %s": " アクセス方式 : %s",
		"=======================================================": "=======================================================",

		// Frame store
		"Opened %s (%d frames of %d bytes)":         "%s を開きました (%d フレーム, 各 %d バイト)",
		"Preloading %d frames":                      "%d フレームを先読み中",
		"Ignoring %d trailing bytes after frame %d": "末尾の %d バイトを無視します (フレーム %d 以降)",

		// Player
		"Playing %d frames from frame %d": "%d フレームを再生中 (開始フレーム %d)",
		"Paused at frame %d":              "フレーム %d で一時停止",
		"Resumed at frame %d":             "フレーム %d から再開",
		"Stopped at frame %d":             "フレーム %d で停止",
		"Finished playback.":              "再生が完了しました。",
		"Finished play from %d.":          "%d からの再生が完了しました。",
		"No frames to play":               "再生するフレームがありません",
		"Seek to frame %d":                "フレーム %d へシーク",
		"Frame %d: %s %v":                 "フレーム %d: %s %v",

		// Menu
		"Frame %d is out of range (0-%d)": "フレーム %d は範囲外です (0-%d)",

		// Errors
		"Playback failed: %v":                                     "再生に失敗しました: %v",
		"Failed to close display: %v":                             "ディスプレイを閉じられませんでした: %v",
		"Failed to close frame store: %v":                         "フレームストアを閉じられませんでした: %v",
		"Standard output is not a terminal, using the %s display": "標準出力が端末ではないため %s 表示を使用します",
		"Failed to write summary: %v":                             "サマリーの書き込みに失敗しました: %v",
		"Summary written to %s":                                   "サマリーを %s に書き込みました",
		"Interrupted, shutting down...":                           "中断されました。シャットダウン中...",
	})
}
