// Package immunize provides the numerical core to immunize a single future debt
// obligation with a portfolio of bonds.
//
// The core functionalities include:
//   - Yield Solving: finding the periodic yield to maturity of a bond from its
//     price and per-period cash flows, with a bounded Newton-Raphson iteration.
//   - Risk Metrics: Macaulay duration and convexity of each bond at its yield.
//   - Obligation Valuation: the present value of the debt, discounted at the
//     average yield of the available bonds.
//   - Portfolio Selection: a linear program whose solution matches the
//     obligation horizon with the portfolio duration and maximizes the portfolio
//     convexity. The program is solved by any LPEngine, the default one being
//     backed by gonum's simplex.
//   - Data Persistence: decoding the bond dataset from its plain text format or
//     from any JSON document.
//
// This package serves as the foundational logic for the `immunize`
// command-line tool.
package immunize
