package logger

import "github.com/ideamans/go-l10n"

func init() {
	l10n.Register("ja", l10n.LexiconMap{
		// Session level messages (info)
		"Playing %s...":                 "%s を再生中...",
		"Playback finished":             "再生が終了しました",
		"Interrupted, shutting down...": "中断されました。シャットダウン中...",

		// Capture component
		"Session setup, hardware decoding: %t": "セッションをセットアップ、ハードウェアデコード: %t",
		"Output size changed: %dx%d":           "出力サイズが変更されました: %dx%d",
		"Session cleaned up":                   "セッションをクリーンアップしました",

		// Ring component
		"Failed to create surface texture: %s": "サーフェステクスチャの作成に失敗しました: %s",
		"Failed to create render target: %s":   "レンダーターゲットの作成に失敗しました: %s",
		"Render target incomplete: %s":         "レンダーターゲットが不完全です: %s",

		// Engine component
		"Opened %s: %dx%d":               "%s を開きました: %dx%d",
		"Skipping sample at %d ms: %s":   "%d ms のサンプルをスキップ: %s",
		"Playlist: selected entry %d/%d": "プレイリスト: エントリ %d/%d を選択",
		"Decoded %d frames":              "%d フレームをデコードしました",
		"Decoding finished in %d ms":     "デコードが %d ms で完了しました",

		// Display component
		"Presented %d frames (%d ticks without output)": "%d フレームを表示しました (%d ティックは出力なし)",
		"Failed to write frame %d: %s":                  "フレーム %d の書き込みに失敗しました: %s",

		// Warnings
		"No frames decoded, source may be unsupported": "フレームがデコードされませんでした。未対応のソースの可能性があります",

		// Errors
		"Failed to open media: %s":    "メディアのオープンに失敗しました: %s",
		"Failed to attach context":    "コンテキストのアタッチに失敗しました",
		"Playback failed: %s":         "再生に失敗しました: %s",
		"Failed to write summary: %s": "サマリーの書き込みに失敗しました: %s",
	})
}
