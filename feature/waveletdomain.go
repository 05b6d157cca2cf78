package feature

import "github.com/cwbudde/algo-biosig/dsp/wavelet"

// waveletDomain computes per-band decomposition energies for one channel
// window. The result always has level+1 entries so the feature schema
// stays fixed; bands the decomposition could not reach (very short
// windows) are zero.
func waveletDomain(sig []float64, level int) ([]float64, error) {
	energies, err := wavelet.Energies(sig, level)
	if err != nil {
		return nil, err
	}

	out := make([]float64, level+1)
	copy(out, energies)
	return out, nil
}
