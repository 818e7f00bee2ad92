package settlement

import "math"

// exercise clears c greedily against total and returns what could not be
// covered.
func exercise(c curve, total float64) float64 {
	sgn := signum(total)
	remaining := total
	for i := range c {
		if sgn*remaining <= 0 {
			break
		}
		ex := math.Min(sgn*remaining, -sgn*c[i].Available)
		c[i].Exercised = -sgn * ex
		remaining -= sgn * ex
	}
	return remaining
}

// tail returns the candidates from the last exercised one onwards. They are
// the capacity left to replace a broker's exercised orders.
func (c curve) tail() curve {
	if len(c) == 0 {
		return nil
	}
	last := 0
	for i := range c {
		if c[i].Exercised == 0 {
			break
		}
		last = i
		if math.Abs(c[i].remaining()) > 0 {
			break
		}
	}
	return c[last:]
}

// lastMarket returns the last regulating-market segment that was exercised.
func (c curve) lastMarket() (Candidate, bool) {
	for i := len(c) - 1; i >= 0; i-- {
		if c[i].IsSynthetic() && c[i].Exercised != 0 {
			return c[i], true
		}
	}
	return Candidate{}, false
}

// marketCost is the negated cost of the exercised regulating market.
func (c curve) marketCost() float64 {
	seg, ok := c.lastMarket()
	if !ok {
		return 0
	}
	return -seg.TotalECost()
}

func (c curve) exercised() float64 {
	sum := 0.0
	for _, cand := range c {
		sum += cand.Exercised
	}
	return sum
}

func (c curve) marketExercised() float64 {
	sum := 0.0
	for _, cand := range c {
		if cand.IsSynthetic() {
			sum += cand.Exercised
		}
	}
	return sum
}
