// Package mp4source implements ports.FrameSource for H.264 video in MP4
// containers, progressive or fragmented. Samples are demuxed with mp4ff and
// decoded one keyframe-delimited chunk at a time through ffmpeg.
package mp4source

import (
	"fmt"
	"io"

	"github.com/Eyevinn/mp4ff/mp4"
)

// rawSample is one demuxed video sample in Annex B format, with parameter
// sets already prepended on keyframes.
type rawSample struct {
	Data        []byte
	TimestampMs int
	DurationMs  int
	Keyframe    bool
}

// videoTrack is the demuxed video track of one media item.
type videoTrack struct {
	Width      int
	Height     int
	DurationMs int
	Samples    []rawSample
}

// demux parses the MP4 and extracts the first video track's samples.
func demux(reader io.ReadSeeker) (*videoTrack, error) {
	mp4File, err := mp4.DecodeFile(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to parse mp4: %w", err)
	}
	if mp4File.IsFragmented() {
		return demuxFragmented(mp4File)
	}
	return demuxProgressive(mp4File, reader)
}

// findVideoTrack locates the first "vide" track and its avc1 sample entry.
func findVideoTrack(moov *mp4.MoovBox) (*mp4.TrakBox, *mp4.VisualSampleEntryBox, error) {
	if moov == nil {
		return nil, nil, fmt.Errorf("no moov box found")
	}
	for _, trak := range moov.Traks {
		if trak.Mdia == nil || trak.Mdia.Hdlr == nil || trak.Mdia.Hdlr.HandlerType != "vide" {
			continue
		}
		var entry *mp4.VisualSampleEntryBox
		if trak.Mdia.Minf != nil && trak.Mdia.Minf.Stbl != nil && trak.Mdia.Minf.Stbl.Stsd != nil {
			for _, child := range trak.Mdia.Minf.Stbl.Stsd.Children {
				if avc1, ok := child.(*mp4.VisualSampleEntryBox); ok {
					entry = avc1
					break
				}
			}
		}
		return trak, entry, nil
	}
	return nil, nil, fmt.Errorf("no video track found")
}

// parameterSets returns the track's SPS and PPS NALUs in Annex B format.
func parameterSets(entry *mp4.VisualSampleEntryBox) []byte {
	if entry == nil || entry.AvcC == nil {
		return nil
	}
	var out []byte
	for _, sps := range entry.AvcC.SPSnalus {
		out = append(out, 0, 0, 0, 1)
		out = append(out, sps...)
	}
	for _, pps := range entry.AvcC.PPSnalus {
		out = append(out, 0, 0, 0, 1)
		out = append(out, pps...)
	}
	return out
}

// avccToAnnexB rewrites length-prefixed NALUs into start-code-prefixed ones.
func avccToAnnexB(data []byte) []byte {
	var out []byte
	offset := 0
	for offset+4 <= len(data) {
		naluLen := int(data[offset])<<24 | int(data[offset+1])<<16 |
			int(data[offset+2])<<8 | int(data[offset+3])
		offset += 4
		if naluLen < 0 || offset+naluLen > len(data) {
			break
		}
		out = append(out, 0, 0, 0, 1)
		out = append(out, data[offset:offset+naluLen]...)
		offset += naluLen
	}
	return out
}

// frameData assembles one decodable Annex B chunk, prepending parameter sets
// on keyframes so each keyframe chunk is self-contained.
func frameData(spsPPS, sampleData []byte, keyframe bool) []byte {
	annexB := avccToAnnexB(sampleData)
	if !keyframe || len(spsPPS) == 0 {
		return annexB
	}
	out := make([]byte, 0, len(spsPPS)+len(annexB))
	out = append(out, spsPPS...)
	return append(out, annexB...)
}

func toMs(ticks uint64, timescale uint32) int {
	if timescale == 0 {
		timescale = 1000
	}
	return int(ticks * 1000 / uint64(timescale))
}

func demuxProgressive(mp4File *mp4.File, reader io.ReadSeeker) (*videoTrack, error) {
	trak, entry, err := findVideoTrack(mp4File.Moov)
	if err != nil {
		return nil, err
	}
	if trak.Mdia.Minf == nil || trak.Mdia.Minf.Stbl == nil {
		return nil, fmt.Errorf("no sample table found")
	}
	stbl := trak.Mdia.Minf.Stbl
	if stbl.Stsz == nil {
		return nil, fmt.Errorf("no sample sizes found")
	}

	var timescale uint32 = 1000
	if trak.Mdia.Mdhd != nil {
		timescale = trak.Mdia.Mdhd.Timescale
	}

	track := &videoTrack{}
	if entry != nil {
		track.Width = int(entry.Width)
		track.Height = int(entry.Height)
	}
	if trak.Mdia.Mdhd != nil {
		track.DurationMs = toMs(trak.Mdia.Mdhd.Duration, timescale)
	}

	// Without an stss box every sample is a sync sample.
	syncSamples := make(map[uint32]bool)
	if stbl.Stss != nil {
		for _, nr := range stbl.Stss.SampleNumber {
			syncSamples[nr] = true
		}
	}

	spsPPS := parameterSets(entry)
	for nr := uint32(1); nr <= stbl.Stsz.SampleNumber; nr++ {
		data, err := readSample(stbl, reader, nr)
		if err != nil {
			continue
		}
		var decodeTime uint64
		var dur uint32
		if stbl.Stts != nil {
			decodeTime, dur = stbl.Stts.GetDecodeTime(nr)
		}
		keyframe := syncSamples[nr] || len(syncSamples) == 0
		track.Samples = append(track.Samples, rawSample{
			Data:        frameData(spsPPS, data, keyframe),
			TimestampMs: toMs(decodeTime, timescale),
			DurationMs:  toMs(uint64(dur), timescale),
			Keyframe:    keyframe,
		})
	}
	return track, nil
}

func demuxFragmented(mp4File *mp4.File) (*videoTrack, error) {
	if mp4File.Init == nil {
		return nil, fmt.Errorf("no init segment found")
	}
	trak, entry, err := findVideoTrack(mp4File.Init.Moov)
	if err != nil {
		return nil, err
	}
	trackID := trak.Tkhd.TrackID

	var timescale uint32 = 1000
	if trak.Mdia.Mdhd != nil {
		timescale = trak.Mdia.Mdhd.Timescale
	}

	var trex *mp4.TrexBox
	if mp4File.Init.Moov.Mvex != nil {
		for _, t := range mp4File.Init.Moov.Mvex.Trexs {
			if t.TrackID == trackID {
				trex = t
				break
			}
		}
	}

	track := &videoTrack{}
	if entry != nil {
		track.Width = int(entry.Width)
		track.Height = int(entry.Height)
	}

	spsPPS := parameterSets(entry)
	for _, seg := range mp4File.Segments {
		for _, frag := range seg.Fragments {
			if frag.Moof == nil {
				continue
			}
			for _, traf := range frag.Moof.Trafs {
				if traf.Tfhd.TrackID != trackID {
					continue
				}
				var currentTime uint64
				if traf.Tfdt != nil {
					currentTime = traf.Tfdt.BaseMediaDecodeTime()
				}
				samples, err := frag.GetFullSamples(trex)
				if err != nil {
					return nil, fmt.Errorf("failed to read fragment samples: %w", err)
				}
				for i, sample := range samples {
					keyframe := sample.Flags == mp4.SyncSampleFlags || (i == 0 && len(track.Samples) == 0)
					track.Samples = append(track.Samples, rawSample{
						Data:        frameData(spsPPS, sample.Data, keyframe),
						TimestampMs: toMs(currentTime, timescale),
						DurationMs:  toMs(uint64(sample.Dur), timescale),
						Keyframe:    keyframe,
					})
					currentTime += uint64(sample.Dur)
				}
			}
		}
	}
	if len(track.Samples) > 0 {
		last := track.Samples[len(track.Samples)-1]
		track.DurationMs = last.TimestampMs + last.DurationMs
	}
	return track, nil
}

// readSample reads one sample's bytes via the chunk tables of a progressive
// file.
func readSample(stbl *mp4.StblBox, reader io.ReadSeeker, sampleNr uint32) ([]byte, error) {
	if stbl.Stsc == nil {
		return nil, fmt.Errorf("no chunk mapping found")
	}
	chunkNr, firstSampleInChunk, err := stbl.Stsc.ChunkNrFromSampleNr(int(sampleNr))
	if err != nil {
		return nil, fmt.Errorf("failed to map sample %d: %w", sampleNr, err)
	}

	var chunkOffset uint64
	switch {
	case stbl.Stco != nil:
		chunkOffset, err = stbl.Stco.GetOffset(chunkNr)
		if err != nil {
			return nil, fmt.Errorf("failed to locate chunk %d: %w", chunkNr, err)
		}
	case stbl.Co64 != nil:
		if chunkNr < 1 || chunkNr > len(stbl.Co64.ChunkOffset) {
			return nil, fmt.Errorf("chunk %d out of range", chunkNr)
		}
		chunkOffset = stbl.Co64.ChunkOffset[chunkNr-1]
	default:
		return nil, fmt.Errorf("no chunk offsets found")
	}

	offset := chunkOffset
	for s := uint32(firstSampleInChunk); s < sampleNr; s++ {
		offset += uint64(stbl.Stsz.GetSampleSize(int(s)))
	}

	if _, err := reader.Seek(int64(offset), io.SeekStart); err != nil {
		return nil, fmt.Errorf("failed to seek to sample %d: %w", sampleNr, err)
	}
	data := make([]byte, stbl.Stsz.GetSampleSize(int(sampleNr)))
	if _, err := io.ReadFull(reader, data); err != nil {
		return nil, fmt.Errorf("failed to read sample %d: %w", sampleNr, err)
	}
	return data, nil
}
