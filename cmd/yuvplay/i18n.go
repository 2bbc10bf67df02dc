// Package main provides localization for the yuvplay CLI.
package main

import (
	"github.com/ideamans/go-l10n"
)

func init() {
	// Register Japanese translations for CLI messages.
	l10n.Register("ja", l10n.LexiconMap{
		// Flag categories
		"Input":   "入力",
		"Display": "表示",
		"Logging": "ログ",

		// Root command
		"Inspect raw I420 YUV video files":                                                    "生のI420 YUV動画ファイルを確認",
		"yuvplay plays, pauses, seeks and previews raw I420 frames described by a YAML file.": "yuvplayはYAMLファイルで記述された生のI420フレームを再生・一時停止・シーク・プレビューします。",
		"yuvplay version %s": "yuvplay バージョン %s",

		// Commands
		"Show the interactive menu (default)": "対話メニューを表示（既定）",
		"Play the video":                      "動画を再生",
		"First frame to play":                 "再生を開始するフレーム",
		"Show a single frame":                 "1フレームを表示",
		"Print the configuration summary":     "設定の概要を表示",

		// Flags
		"Video description file; a relative InputFile in it is resolved against its directory": "動画設定ファイル（相対パスのInputFileはこのファイルのディレクトリから解決）",
		"Frame access mode (random, stream or preload)":                                        "フレームアクセス方式（random, stream, preload）",
		"Decode the next frame while the current one is shown":                                 "表示中に次のフレームを先読みする",
		"Display sink (terminal, png or null)":                                                 "表示先（terminal, png, null）",
		"Directory for PNG frames":                                                             "PNGフレームの出力先ディレクトリ",
		"Delay between frames (default: 1/FrameRate)":                                          "フレーム間の待ち時間（既定: 1/FrameRate）",
		"Log level (debug, info, warn, error)":                                                 "ログレベル（debug, info, warn, error）",
		"Suppress log output":                                                                  "ログ出力を抑制",
		"Write a Markdown playback summary to this file":                                       "再生サマリーをMarkdownでこのファイルに書き出す",

		// Errors
		"Error: %v": "エラー: %v",
	})
}
