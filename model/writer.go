package model

import (
	"bytes"
	"encoding/binary"
	"io"
	"os"

	"github.com/katalvlaran/crflat/feature"
	"github.com/katalvlaran/crflat/numeric"
	"github.com/katalvlaran/crflat/semimarkov"
)

// Writer serializes a trained model to the chunked binary format of
// spec §4.4. Every chunk is built into an in-memory buffer first so its
// size is known up front; the writer streams tag+size+buffer for each
// chunk in turn and backpatches only the fixed-size header at the end,
// matching the teacher's "stream then backpatch offsets on close" posture
// without needing mid-stream seeks for variable-length chunks.
type Writer struct {
	variant   numeric.Variant
	idx       *feature.Index
	w         []float64
	labelDict *MapDictionary
	attrDict  *MapDictionary
	sm        *semimarkov.Tables
	smCfg     semimarkov.Config
}

// NewWriter builds a Writer for the given trained weights. sm/smCfg are
// only meaningful (and required) when variant == numeric.SemiMarkov.
func NewWriter(variant numeric.Variant, idx *feature.Index, w []float64, labelDict, attrDict *MapDictionary, sm *semimarkov.Tables, smCfg semimarkov.Config) *Writer {
	return &Writer{variant: variant, idx: idx, w: w, labelDict: labelDict, attrDict: attrDict, sm: sm, smCfg: smCfg}
}

// WriteFile creates (or truncates) path and writes the complete model file.
func (wr *Writer) WriteFile(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	return wr.Write(f)
}

// Write streams the model to dst, an io.WriterAt so the header can be
// backpatched after every chunk's final size and offset are known.
func (wr *Writer) Write(dst io.WriterAt) error {
	compaction := wr.idx.Compact(wr.w)
	records := compactRecords(wr.idx, compaction, wr.w)

	numSources := wr.idx.NumLabels()
	if wr.sm != nil {
		numSources = wr.sm.NumForwardStates()
	}
	attrRefs, sourceRefs := computeRefs(records, compaction.NumAttrs, numSources)

	var body bytes.Buffer
	hdr := header{
		Type:        variantTag(wr.variant),
		Version:     formatVersion,
		NumFeatures: uint32(compaction.NumFeatures),
		NumLabels:   uint32(wr.idx.NumLabels()),
		NumAttrs:    uint32(compaction.NumAttrs),
	}

	hdr.OffFeatures = headerSize
	featuresChunk := buildFeaturesChunk(records)
	writeChunk(&body, "FEAT", featuresChunk)

	hdr.OffLabelRefs = headerSize + uint64(body.Len())
	writeChunk(&body, "LREF", buildRefChunk(sourceRefs))

	hdr.OffAttrRefs = headerSize + uint64(body.Len())
	writeChunk(&body, "AREF", buildRefChunk(attrRefs))

	hdr.OffLabelDict = headerSize + uint64(body.Len())
	writeChunk(&body, "LDIC", buildDictChunk(wr.labelDict))

	hdr.OffAttrDict = headerSize + uint64(body.Len())
	writeChunk(&body, "ADIC", buildDictChunk(wr.attrDict))

	if wr.variant == numeric.SemiMarkov {
		hdr.OffSemiMarkov = headerSize + uint64(body.Len())
		writeChunk(&body, "SMRK", buildSemiMarkovChunk(wr.sm, wr.smCfg))
	}

	hdr.Size = headerSize + uint64(body.Len())

	var headerBuf bytes.Buffer
	headerBuf.Write(magic[:])
	binary.Write(&headerBuf, binary.LittleEndian, hdr.Size)
	headerBuf.Write(hdr.Type[:])
	binary.Write(&headerBuf, binary.LittleEndian, hdr.Version)
	binary.Write(&headerBuf, binary.LittleEndian, hdr.NumFeatures)
	binary.Write(&headerBuf, binary.LittleEndian, hdr.NumLabels)
	binary.Write(&headerBuf, binary.LittleEndian, hdr.NumAttrs)
	binary.Write(&headerBuf, binary.LittleEndian, hdr.OffFeatures)
	binary.Write(&headerBuf, binary.LittleEndian, hdr.OffLabelRefs)
	binary.Write(&headerBuf, binary.LittleEndian, hdr.OffAttrRefs)
	binary.Write(&headerBuf, binary.LittleEndian, hdr.OffLabelDict)
	binary.Write(&headerBuf, binary.LittleEndian, hdr.OffAttrDict)
	binary.Write(&headerBuf, binary.LittleEndian, hdr.OffSemiMarkov)

	if _, err := dst.WriteAt(headerBuf.Bytes(), 0); err != nil {
		return err
	}
	if _, err := dst.WriteAt(body.Bytes(), headerSize); err != nil {
		return err
	}

	return nil
}

// variantTag renders the four-byte variant type tag the header stores
// (spec §4.4: "type[4] (ASCII tag for the variant)").
func variantTag(v numeric.Variant) [4]byte {
	var b [4]byte
	copy(b[:], v.String())

	return b
}

// compactRecords builds the dense, new-id-ordered FeatureRecord slice from
// idx's original descriptors, the weight vector, and a prior Compact call.
func compactRecords(idx *feature.Index, c feature.Compaction, w []float64) []FeatureRecord {
	records := make([]FeatureRecord, c.NumFeatures)
	for fid := 0; fid < idx.NumFeatures(); fid++ {
		newID := c.NewFeatureID[fid]
		if newID == -1 {
			continue
		}
		d, _ := idx.Descriptor(fid)
		src := d.Src
		if d.Kind == feature.State {
			src = c.NewAttrID[d.Src]
		}
		records[newID] = FeatureRecord{Kind: d.Kind, Src: src, Dst: d.Dst, Weight: w[fid]}
	}

	return records
}

// computeRefs rebuilds the attribute→feature-id and source→feature-id
// lists over the dense post-compaction id space (spec §4.2's "rewrite
// feature-id lists ... using the two mapping tables").
func computeRefs(records []FeatureRecord, numAttrs, numSources int) (attrRefs, sourceRefs [][]int) {
	attrRefs = make([][]int, numAttrs)
	sourceRefs = make([][]int, numSources)
	for newID, rec := range records {
		switch rec.Kind {
		case feature.State:
			attrRefs[rec.Src] = append(attrRefs[rec.Src], newID)
		case feature.Transition:
			sourceRefs[rec.Src] = append(sourceRefs[rec.Src], newID)
		}
	}

	return attrRefs, sourceRefs
}

// writeChunk appends tag[4] + size(uint64, length of payload) + payload to
// dst (spec §4.4's "{chunk[4], size, ...}" chunk preamble).
func writeChunk(dst *bytes.Buffer, tag string, payload []byte) {
	var tb [4]byte
	copy(tb[:], tag)
	dst.Write(tb[:])
	binary.Write(dst, binary.LittleEndian, uint64(len(payload)))
	dst.Write(payload)
}

// buildFeaturesChunk encodes num(uint32) then num {type(uint8), src(uint32),
// dst(uint32), weight(float64)} records (spec §4.4 features chunk).
func buildFeaturesChunk(records []FeatureRecord) []byte {
	var buf bytes.Buffer
	binary.Write(&buf, binary.LittleEndian, uint32(len(records)))
	for _, rec := range records {
		binary.Write(&buf, binary.LittleEndian, uint8(rec.Kind))
		binary.Write(&buf, binary.LittleEndian, uint32(rec.Src))
		binary.Write(&buf, binary.LittleEndian, uint32(rec.Dst))
		binary.Write(&buf, binary.LittleEndian, rec.Weight)
	}

	return buf.Bytes()
}

// buildRefChunk encodes num(uint32), offsets[num](uint64, byte offset from
// the start of the entries area), then each entry as {num_fids(uint32),
// fid[0..num_fids-1](uint32)} (spec §4.4 ref chunk layout).
func buildRefChunk(refs [][]int) []byte {
	var entries bytes.Buffer
	offsets := make([]uint64, len(refs))
	for i, ids := range refs {
		offsets[i] = uint64(entries.Len())
		binary.Write(&entries, binary.LittleEndian, uint32(len(ids)))
		for _, fid := range ids {
			binary.Write(&entries, binary.LittleEndian, uint32(fid))
		}
	}

	var buf bytes.Buffer
	binary.Write(&buf, binary.LittleEndian, uint32(len(refs)))
	for _, off := range offsets {
		binary.Write(&buf, binary.LittleEndian, off)
	}
	buf.Write(entries.Bytes())

	return buf.Bytes()
}

// buildDictChunk encodes num(uint32) then num length-prefixed strings, in
// id order (the dictionary's structural contract per spec §4.4A).
func buildDictChunk(dict *MapDictionary) []byte {
	var buf bytes.Buffer
	entries := dict.Entries()
	binary.Write(&buf, binary.LittleEndian, uint32(len(entries)))
	for _, s := range entries {
		binary.Write(&buf, binary.LittleEndian, uint32(len(s)))
		buf.WriteString(s)
	}

	return buf.Bytes()
}

// buildSemiMarkovChunk encodes the semi-Markov table chunk (spec §4.4):
// max_order, num_labels, num_states, num_bkw_states, max_seg_len. The
// forward-state transition table itself is rebuildable from these via
// semimarkov.Build, so it is not duplicated on disk.
func buildSemiMarkovChunk(sm *semimarkov.Tables, cfg semimarkov.Config) []byte {
	var buf bytes.Buffer
	binary.Write(&buf, binary.LittleEndian, int32(sm.MaxOrder()))
	binary.Write(&buf, binary.LittleEndian, int32(sm.NumLabels()))
	binary.Write(&buf, binary.LittleEndian, int32(sm.NumForwardStates()))
	binary.Write(&buf, binary.LittleEndian, int32(sm.NumBackwardStates()))
	binary.Write(&buf, binary.LittleEndian, int32(cfg.MaxSegLen))

	return buf.Bytes()
}
