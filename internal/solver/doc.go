// Package solver fits a formula model to a dataset by damped Gauss-Newton
// (Levenberg-Marquardt) iteration over the sum of squared residuals, using
// numerically perturbed Jacobians.
package solver
