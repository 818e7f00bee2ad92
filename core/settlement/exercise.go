package settlement

// exerciseControls triggers the physical exercise of every cleared broker
// candidate. Each broker's P2 is spread over its orders pro rata.
func (p *pass) exerciseControls(c curve) {
	for _, ci := range p.charges {
		var own []Candidate
		for _, cand := range c {
			if cand.owner == ci && cand.Exercised != 0 {
				ci.AddCurtailment(cand.Exercised)
				own = append(own, cand)
			}
		}
		for _, cand := range own {
			payment := ci.P2 * cand.Exercised / ci.CurtailmentKWh
			p.log.Debugf("exercise %s of %s: %.4f kWh for %.6f", cand.order.ID, ci.Broker.Name(), cand.Exercised, payment)
			p.control.ExerciseBalancingControl(cand.order, cand.Exercised, payment)
		}
	}
}
