package cmd

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/unicfd/uniflow/bcond"
	"github.com/unicfd/uniflow/decomp"
	"github.com/unicfd/uniflow/drivers"
	"github.com/unicfd/uniflow/field"
	"github.com/unicfd/uniflow/mesh"
	"github.com/unicfd/uniflow/mp"
	"github.com/unicfd/uniflow/paramstore"
	"github.com/unicfd/uniflow/tensor"
	"github.com/unicfd/uniflow/turbulence"
	"github.com/unicfd/uniflow/walldist"
)

func runE(_ *cobra.Command, args []string) error {
	stopper := startProfiling()
	defer stopper.Stop()

	path, err := expandPath(args[0])
	if err != nil {
		return fmt.Errorf("cmd: expanding controls path: %w", err)
	}
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("cmd: opening controls file: %w", err)
	}
	defer f.Close()

	ctl, err := paramstore.LoadControls(f)
	if err != nil {
		return fmt.Errorf("cmd: loading controls: %w", err)
	}

	network, err := buildNetwork()
	if err != nil {
		return err
	}

	if partitionFile != "" {
		if err := logPartitionMap(partitionFile); err != nil {
			return err
		}
	}

	m, err := buildMesh(ctl.Mesh)
	if err != nil {
		return err
	}

	if err := walldist.Compute(m, ctl, network); err != nil {
		return fmt.Errorf("cmd: computing wall distance: %w", err)
	}

	uBC, pBC, err := scenarioBCs(ctl.Mesh, m)
	if err != nil {
		return err
	}

	if network.HostID() == 0 {
		logrus.WithField("solver", ctl.Solver).WithField("mesh", ctl.Mesh).Info("starting run")
	}

	switch ctl.Solver {
	case "diffusion":
		return runDiffusion(m, ctl, network)
	case "transport":
		return runTransport(m, ctl, network)
	case "potential":
		return runPotential(m, ctl, uBC, pBC, network)
	default:
		return runPISO(m, ctl, uBC, pBC, network)
	}
}

func buildNetwork() (mp.MP, error) {
	if nRanks <= 1 {
		return mp.NewLocal(), nil
	}
	return nil, fmt.Errorf("cmd: multi-rank TCPRing wiring requires rank addresses, not supported on this command line yet")
}

func logPartitionMap(path string) error {
	pf, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("cmd: opening partition map: %w", err)
	}
	defer pf.Close()
	pm, err := decomp.Load(pf)
	if err != nil {
		return fmt.Errorf("cmd: parsing partition map: %w", err)
	}
	logrus.WithField("rank", pm.Rank).WithField("nRanks", pm.NRanks).Info("loaded partition map")
	return nil
}

func runDiffusion(m *mesh.Mesh, ctl *paramstore.Controls, network mp.MP) error {
	tBC := bcond.NewRegistry[tensor.Scalar]()
	d := drivers.NewDiffusion(m, ctl, tBC, network)
	for step := ctl.StartStep; step < ctl.EndStep; step++ {
		if err := d.Step(step); err != nil {
			return err
		}
	}
	return nil
}

func runTransport(m *mesh.Mesh, ctl *paramstore.Controls, network mp.MP) error {
	F := zeroFlux(m)
	tBC := bcond.NewRegistry[tensor.Scalar]()
	tr := drivers.NewTransport(m, ctl, F, tBC, network)
	for step := ctl.StartStep; step < ctl.EndStep; step++ {
		if err := tr.Step(step); err != nil {
			return err
		}
	}
	return nil
}

func runPotential(m *mesh.Mesh, ctl *paramstore.Controls, uBC *bcond.Registry[tensor.Vector], pBC *bcond.Registry[tensor.Scalar], network mp.MP) error {
	po := drivers.NewPotential(m, ctl, uBC, pBC, network)
	return po.Solve()
}

func runPISO(m *mesh.Mesh, ctl *paramstore.Controls, uBC *bcond.Registry[tensor.Vector], pBC *bcond.Registry[tensor.Scalar], network mp.MP) error {
	kReg := bcond.NewRegistry[tensor.Scalar]()
	xReg := bcond.NewRegistry[tensor.Scalar]()
	turb, err := turbulence.NewModel(ctl.TurbulenceModel, m, kReg, xReg)
	if err != nil {
		return fmt.Errorf("cmd: building turbulence model: %w", err)
	}

	p := drivers.NewPISO(m, ctl, uBC, pBC, turb, network)
	if ctl.State == paramstore.Transient && ctl.WriteInterval > 0 {
		p.EnableLESAverage()
	}
	for step := ctl.StartStep; step < ctl.EndStep; step++ {
		if err := p.Step(step); err != nil {
			return err
		}
	}
	return nil
}

// zeroFlux stands in for the externally supplied face flux a transport
// run needs; with nothing upstream producing F yet, running "transport"
// from the CLI degenerates to pure diffusion until a flux source (a
// prior PISO run's F, or a prescribed field) is wired in.
func zeroFlux(m *mesh.Mesh) *field.Field[tensor.Scalar] {
	F := field.NewFace[tensor.Scalar]("F", field.None, m)
	F.Fill(0)
	return F
}
