package numeric

// matrixF64 is a row-major float64 matrix: element (row, col) lives at
// data[row*cols+col]. Unlike the teacher's matrix.Dense, it supports
// growing its row count in place (NumericContext's T-sized matrices are
// reused across instances and only reallocated when num_items outgrows
// cap_items, per spec §4.1's reset policy).
type matrixF64 struct {
	rows, cols int
	data       []float64
}

// newMatrixF64 allocates a rows×cols matrix of zeros.
func newMatrixF64(rows, cols int) (*matrixF64, error) {
	if rows <= 0 || cols <= 0 {
		return nil, ErrInvalidDimensions
	}

	return &matrixF64{rows: rows, cols: cols, data: make([]float64, rows*cols)}, nil
}

// at returns the value at (row, col).
func (m *matrixF64) at(row, col int) float64 {
	return m.data[row*m.cols+col]
}

// set assigns v at (row, col).
func (m *matrixF64) set(row, col int, v float64) {
	m.data[row*m.cols+col] = v
}

// add accumulates v into (row, col).
func (m *matrixF64) add(row, col int, v float64) {
	m.data[row*m.cols+col] += v
}

// rowSlice returns the backing slice for one row, for vectorized ops
// (gonum.org/v1/gonum/floats operates on []float64).
func (m *matrixF64) rowSlice(row int) []float64 {
	start := row * m.cols

	return m.data[start : start+m.cols]
}

// zero clears every element to 0.
func (m *matrixF64) zero() {
	for i := range m.data {
		m.data[i] = 0
	}
}

// growRows reallocates the matrix to have at least newRows rows, discarding
// old contents (NumericContext scratch is always rebuilt per instance, so
// preserving old data on growth would be wasted work).
func (m *matrixF64) growRows(newRows int) {
	if newRows <= m.rows {
		return
	}
	m.rows = newRows
	m.data = make([]float64, m.rows*m.cols)
}

// matrixInt is matrixF64's int counterpart, used for Viterbi back-pointers.
type matrixInt struct {
	rows, cols int
	data       []int
}

func newMatrixInt(rows, cols int) (*matrixInt, error) {
	if rows <= 0 || cols <= 0 {
		return nil, ErrInvalidDimensions
	}

	return &matrixInt{rows: rows, cols: cols, data: make([]int, rows*cols)}, nil
}

func (m *matrixInt) at(row, col int) int { return m.data[row*m.cols+col] }

func (m *matrixInt) set(row, col int, v int) { m.data[row*m.cols+col] = v }

func (m *matrixInt) zero() {
	for i := range m.data {
		m.data[i] = 0
	}
}

func (m *matrixInt) growRows(newRows int) {
	if newRows <= m.rows {
		return
	}
	m.rows = newRows
	m.data = make([]int, m.rows*m.cols)
}
