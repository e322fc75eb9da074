/*Package scan generates the ordered actuator positions of 1, 2 and N
dimensional scans, and the index tables used to reshape a flat acquisition
stream into an N-D array.

A scan is described by a Type (the topology) and a Subtype (the algorithm).
NewParameters validates the pair against the registry of generators and
SetScan produces a fresh Info:

	p, err := scan.NewParameters(scan.Settings{
		Type:    scan.Scan2D,
		Subtype: scan.BackAndForth,
		Starts:  []float64{0, 0},
		Stops:   []float64{10, 10},
		Steps:   []float64{2, 2},
	})
	if err != nil {
		return err
	}
	info, err := p.SetScan()

Misconfigured bounds (zero step, a step pointing away from the stop, equal
start and stop) are not errors.  They degrade to a single point scan at the
start position so that a typo does not abort a running session.  Scans whose
estimated size exceeds the steps limit return an empty Info instead of being
generated.
*/
package scan
