// Package main provides localization for the framecast CLI.
package main

import (
	"github.com/ideamans/go-l10n"
)

func init() {
	// Register Japanese translations for CLI messages.
	l10n.Register("ja", l10n.LexiconMap{
		// Root command
		"Play video into off-screen surfaces and capture the presented frames.": "動画をオフスクリーンサーフェスに再生し、表示フレームをキャプチャします。",

		// Play command
		"Play a video or playlist into an off-screen frame sink.": "動画またはプレイリストをオフスクリーンのフレームシンクに再生",
		"MP4 file or .m3u playlist to play.":                      "再生するMP4ファイルまたは.m3uプレイリスト",

		// Output flags
		"Directory for presented frames as PNG (omit to discard).": "表示フレームのPNG出力ディレクトリ（省略時は破棄）",

		// Playback flags
		"Graphics device backend (soft or gl).":                 "グラフィックスデバイスのバックエンド（soft または gl）",
		"Display tick rate (default: 60).":                      "表示ティックレート（デフォルト: 60）",
		"Decode as fast as possible instead of real-time pacing.": "リアルタイムペーシングせず最速でデコード",
		"Pick a random playlist entry instead of the first.":    "プレイリストの先頭ではなくランダムなエントリを選択",
		"Seed for the shuffle pick (default: current time).":    "シャッフル選択のシード（デフォルト: 現在時刻）",

		// Decoding flags
		"Path to ffmpeg executable (falls back to PATH, then common locations).": "ffmpeg実行ファイルのパス（省略時はPATHと既知の場所を検索）",

		// Configuration flags
		"YAML configuration file (flags override it).": "YAML設定ファイル（フラグが優先されます）",

		// Reporting flags
		"Write a playback summary to this file (.md for Markdown).": "再生サマリーをこのファイルに出力（.mdでMarkdown形式）",

		// Logging flags
		"Log level (debug, info, warn, error)": "ログレベル（debug, info, warn, error）",
		"Suppress all log output":              "全てのログ出力を抑制",

		// Version command
		"Show version information":      "バージョン情報を表示",
		"framecast (Go) version %s":     "framecast (Go版) バージョン %s",

		// Runtime messages
		"Summary saved to %s": "サマリーを %s に保存しました",
	})
}
