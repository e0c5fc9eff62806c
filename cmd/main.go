/*
Copyright 2024 Payflow Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package main

import (
	"fmt"
	"log"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/kaptain9960/payflow"
	"github.com/kaptain9960/payflow/config"
	"github.com/kaptain9960/payflow/database"
	"github.com/kaptain9960/payflow/internal/notification"
)

type payflowCLI struct {
	cmd *cobra.Command
}

type payflowInstance struct {
	service *payflow.Payflow
	cnf     *config.Configuration
}

func recoverPanic() {
	if rec := recover(); rec != nil {
		logrus.Error(rec)
		os.Exit(1)
	}
}

func preRun(app *payflowInstance, configFile *string) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) error {
		err := config.InitConfig(*configFile)
		if err != nil {
			log.Fatal("error loading config", err)
		}

		cnf, err := config.Fetch()
		if err != nil {
			return err
		}

		service, err := setupPayflow(cnf)
		if err != nil {
			notification.NotifyError(err)
			log.Fatal(err)
		}

		app.service = service
		app.cnf = cnf

		return nil
	}
}

func setupPayflow(cfg *config.Configuration) (*payflow.Payflow, error) {
	db, err := database.NewDataSource(cfg)
	if err != nil {
		return nil, fmt.Errorf("error getting datasource: %v", err)
	}

	service, err := payflow.NewPayflow(db)
	if err != nil {
		return nil, fmt.Errorf("error creating payflow: %v", err)
	}
	return service, nil
}

func NewCLI() *payflowCLI {
	var configFile string
	b := &payflowInstance{}

	var rootCmd = &cobra.Command{
		Use:   "payflow",
		Short: "Transactional workflow service",
		Run:   func(cmd *cobra.Command, args []string) {},
	}

	rootCmd.PersistentFlags().StringVar(&configFile, "config", "./payflow.json", "Configuration file for payflow")
	rootCmd.PersistentPreRunE = preRun(b, &configFile)

	rootCmd.AddCommand(serverCommands(b))
	rootCmd.AddCommand(migrateCommands(b))

	return &payflowCLI{cmd: rootCmd}
}

func (c *payflowCLI) executeCLI() {
	if err := c.cmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func main() {
	defer recoverPanic()
	cli := NewCLI()
	cli.executeCLI()
}
