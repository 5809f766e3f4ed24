package model

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"os"

	"github.com/katalvlaran/crflat/feature"
)

// ReadFile opens path and decodes the complete model file into a Snapshot.
func ReadFile(path string) (*Snapshot, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, err
	}

	return Read(f, info.Size())
}

// Read decodes a complete model from src, an io.ReaderAt of the given
// total size (src.Size() equivalent, since io.ReaderAt has no Size method).
func Read(src io.ReaderAt, size int64) (*Snapshot, error) {
	if size < headerSize {
		return nil, fmt.Errorf("model.Read: %w", ErrInvalidModelFile)
	}

	hdrBuf := make([]byte, headerSize)
	if _, err := src.ReadAt(hdrBuf, 0); err != nil {
		return nil, fmt.Errorf("model.Read: %w", err)
	}
	hdr, err := decodeHeader(hdrBuf)
	if err != nil {
		return nil, err
	}
	if int64(hdr.Size) != size {
		return nil, fmt.Errorf("model.Read: %w", ErrInvalidModelFile)
	}

	snap := &Snapshot{
		Type:        hdr.Type,
		NumFeatures: int(hdr.NumFeatures),
		NumLabels:   int(hdr.NumLabels),
		NumAttrs:    int(hdr.NumAttrs),
	}

	featuresPayload, err := readChunk(src, size, hdr.OffFeatures, "FEAT")
	if err != nil {
		return nil, err
	}
	snap.Features, err = decodeFeaturesChunk(featuresPayload)
	if err != nil {
		return nil, err
	}

	labelRefsPayload, err := readChunk(src, size, hdr.OffLabelRefs, "LREF")
	if err != nil {
		return nil, err
	}
	snap.LabelRefs, err = decodeRefChunk(labelRefsPayload)
	if err != nil {
		return nil, err
	}

	attrRefsPayload, err := readChunk(src, size, hdr.OffAttrRefs, "AREF")
	if err != nil {
		return nil, err
	}
	snap.AttrRefs, err = decodeRefChunk(attrRefsPayload)
	if err != nil {
		return nil, err
	}

	labelDictPayload, err := readChunk(src, size, hdr.OffLabelDict, "LDIC")
	if err != nil {
		return nil, err
	}
	labelEntries, err := decodeDictChunk(labelDictPayload)
	if err != nil {
		return nil, err
	}
	snap.LabelDict = NewMapDictionary(labelEntries)

	attrDictPayload, err := readChunk(src, size, hdr.OffAttrDict, "ADIC")
	if err != nil {
		return nil, err
	}
	attrEntries, err := decodeDictChunk(attrDictPayload)
	if err != nil {
		return nil, err
	}
	snap.AttrDict = NewMapDictionary(attrEntries)

	if hdr.OffSemiMarkov != 0 {
		smPayload, err := readChunk(src, size, hdr.OffSemiMarkov, "SMRK")
		if err != nil {
			return nil, err
		}
		snap.SemiMarkov, err = decodeSemiMarkovChunk(smPayload)
		if err != nil {
			return nil, err
		}
	}

	return snap, nil
}

func decodeHeader(buf []byte) (header, error) {
	var hdr header
	if !bytes.Equal(buf[:4], magic[:]) {
		return hdr, fmt.Errorf("model.decodeHeader: %w", ErrInvalidModelFile)
	}
	r := bytes.NewReader(buf[4:])
	binary.Read(r, binary.LittleEndian, &hdr.Size)
	io.ReadFull(r, hdr.Type[:])
	binary.Read(r, binary.LittleEndian, &hdr.Version)
	binary.Read(r, binary.LittleEndian, &hdr.NumFeatures)
	binary.Read(r, binary.LittleEndian, &hdr.NumLabels)
	binary.Read(r, binary.LittleEndian, &hdr.NumAttrs)
	binary.Read(r, binary.LittleEndian, &hdr.OffFeatures)
	binary.Read(r, binary.LittleEndian, &hdr.OffLabelRefs)
	binary.Read(r, binary.LittleEndian, &hdr.OffAttrRefs)
	binary.Read(r, binary.LittleEndian, &hdr.OffLabelDict)
	binary.Read(r, binary.LittleEndian, &hdr.OffAttrDict)
	binary.Read(r, binary.LittleEndian, &hdr.OffSemiMarkov)

	return hdr, nil
}

// readChunk reads a chunk starting at off, validates its tag, and returns
// its payload (everything after the tag[4]+size(uint64) preamble).
func readChunk(src io.ReaderAt, fileSize int64, off uint64, wantTag string) ([]byte, error) {
	if off == 0 || int64(off)+12 > fileSize {
		return nil, fmt.Errorf("model.readChunk(%s): %w", wantTag, ErrInvalidModelFile)
	}
	preamble := make([]byte, 12)
	if _, err := src.ReadAt(preamble, int64(off)); err != nil {
		return nil, fmt.Errorf("model.readChunk(%s): %w", wantTag, err)
	}
	if string(preamble[:4]) != wantTag {
		return nil, fmt.Errorf("model.readChunk(%s): %w", wantTag, ErrInvalidModelFile)
	}
	payloadSize := binary.LittleEndian.Uint64(preamble[4:12])
	if int64(off)+12+int64(payloadSize) > fileSize {
		return nil, fmt.Errorf("model.readChunk(%s): %w", wantTag, ErrInvalidModelFile)
	}
	payload := make([]byte, payloadSize)
	if _, err := src.ReadAt(payload, int64(off)+12); err != nil {
		return nil, fmt.Errorf("model.readChunk(%s): %w", wantTag, err)
	}

	return payload, nil
}

func decodeFeaturesChunk(payload []byte) ([]FeatureRecord, error) {
	r := bytes.NewReader(payload)
	var num uint32
	if err := binary.Read(r, binary.LittleEndian, &num); err != nil {
		return nil, fmt.Errorf("model.decodeFeaturesChunk: %w", ErrInvalidModelFile)
	}
	records := make([]FeatureRecord, num)
	for i := range records {
		var kind uint8
		var src, dst uint32
		var weight float64
		if err := binary.Read(r, binary.LittleEndian, &kind); err != nil {
			return nil, fmt.Errorf("model.decodeFeaturesChunk: %w", ErrInvalidModelFile)
		}
		binary.Read(r, binary.LittleEndian, &src)
		binary.Read(r, binary.LittleEndian, &dst)
		binary.Read(r, binary.LittleEndian, &weight)
		records[i] = FeatureRecord{Kind: feature.Kind(kind), Src: int(src), Dst: int(dst), Weight: weight}
	}

	return records, nil
}

func decodeRefChunk(payload []byte) ([][]int, error) {
	r := bytes.NewReader(payload)
	var num uint32
	if err := binary.Read(r, binary.LittleEndian, &num); err != nil {
		return nil, fmt.Errorf("model.decodeRefChunk: %w", ErrInvalidModelFile)
	}
	offsets := make([]uint64, num)
	for i := range offsets {
		binary.Read(r, binary.LittleEndian, &offsets[i])
	}
	entriesStart := 4 + int(num)*8
	entries := payload[entriesStart:]

	refs := make([][]int, num)
	for i, off := range offsets {
		er := bytes.NewReader(entries[off:])
		var numFids uint32
		if err := binary.Read(er, binary.LittleEndian, &numFids); err != nil {
			return nil, fmt.Errorf("model.decodeRefChunk: %w", ErrInvalidModelFile)
		}
		ids := make([]int, numFids)
		for j := range ids {
			var fid uint32
			binary.Read(er, binary.LittleEndian, &fid)
			ids[j] = int(fid)
		}
		refs[i] = ids
	}

	return refs, nil
}

func decodeDictChunk(payload []byte) ([]string, error) {
	r := bytes.NewReader(payload)
	var num uint32
	if err := binary.Read(r, binary.LittleEndian, &num); err != nil {
		return nil, fmt.Errorf("model.decodeDictChunk: %w", ErrInvalidModelFile)
	}
	entries := make([]string, num)
	for i := range entries {
		var strLen uint32
		if err := binary.Read(r, binary.LittleEndian, &strLen); err != nil {
			return nil, fmt.Errorf("model.decodeDictChunk: %w", ErrInvalidModelFile)
		}
		buf := make([]byte, strLen)
		if _, err := io.ReadFull(r, buf); err != nil {
			return nil, fmt.Errorf("model.decodeDictChunk: %w", ErrInvalidModelFile)
		}
		entries[i] = string(buf)
	}

	return entries, nil
}

func decodeSemiMarkovChunk(payload []byte) (*SemiMarkovSnapshot, error) {
	if len(payload) < 20 {
		return nil, fmt.Errorf("model.decodeSemiMarkovChunk: %w", ErrInvalidModelFile)
	}
	r := bytes.NewReader(payload)
	var maxOrder, numLabels, numStates, numBkw, maxSegLen int32
	binary.Read(r, binary.LittleEndian, &maxOrder)
	binary.Read(r, binary.LittleEndian, &numLabels)
	binary.Read(r, binary.LittleEndian, &numStates)
	binary.Read(r, binary.LittleEndian, &numBkw)
	binary.Read(r, binary.LittleEndian, &maxSegLen)

	return &SemiMarkovSnapshot{
		MaxOrder:          int(maxOrder),
		NumLabels:         int(numLabels),
		NumStates:         int(numStates),
		NumBackwardStates: int(numBkw),
		MaxSegLen:         int(maxSegLen),
	}, nil
}
